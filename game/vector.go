package game

import (
	"errors"
	"log/slog"
	"math"
)

// Epsilon is the per-component tolerance used for every float comparison in
// the engine. Repeated normalize/scale rounds drift far less than this.
const Epsilon = 1e-7

// ErrZeroVector is returned when normalizing a vector with no length.
var ErrZeroVector = errors.New("normalize zero-length vector")

// Vector is a point in the plane or a displacement between two points.
// Coordinates follow the screen convention: (0,0) is top-left, y grows down.
type Vector struct {
	X float64
	Y float64
}

func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector) Sub(o Vector) Vector {
	return Vector{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vector) Scale(f float64) Vector {
	return Vector{X: v.X * f, Y: v.Y * f}
}

// Length is the Euclidean norm. math.Hypot keeps large components from
// overflowing the intermediate square.
func (v Vector) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector pointing the same way as v.
func (v Vector) Normalize() (Vector, error) {
	l := v.Length()
	if l < Epsilon {
		return Vector{}, ErrZeroVector
	}
	return v.Scale(1 / l), nil
}

func (v Vector) Dot(o Vector) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Equal compares component-wise within Epsilon.
func (v Vector) Equal(o Vector) bool {
	return almostEqual(v.X, o.X) && almostEqual(v.Y, o.Y)
}

// IsOpposite reports whether v and o cancel out.
func (v Vector) IsOpposite(o Vector) bool {
	return v.Add(o).Equal(Vector{})
}

// LogValue renders the vector as an {x, y} group in structured logs.
func (v Vector) LogValue() slog.Value {
	return slog.GroupValue(slog.Float64("x", v.X), slog.Float64("y", v.Y))
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}
