package game

import "errors"

// ErrDegenerateSegment is returned when a projection is requested onto a
// segment whose endpoints coincide.
var ErrDegenerateSegment = errors.New("segment has zero length")

// Segment is a directed straight piece between two points. It is built on
// demand from consecutive snake points and carries its endpoints by value.
type Segment struct {
	Start Vector
	End   Vector
}

// Vector is the displacement from Start to End.
func (s Segment) Vector() Vector {
	return s.End.Sub(s.Start)
}

func (s Segment) Length() float64 {
	return s.Vector().Length()
}

// Contains reports whether p lies on the segment, using the triangle
// equality |start,p| + |p,end| == |start,end|. This checks collinearity and
// bounds in one comparison.
func (s Segment) Contains(p Vector) bool {
	first := Segment{Start: s.Start, End: p}.Length()
	second := Segment{Start: p, End: s.End}.Length()
	return almostEqual(s.Length(), first+second)
}

// Project returns the orthogonal projection of p onto the infinite line
// through the segment.
func (s Segment) Project(p Vector) (Vector, error) {
	v := s.Vector()
	denom := v.Dot(v)
	if denom < Epsilon*Epsilon {
		return Vector{}, ErrDegenerateSegment
	}
	u := p.Sub(s.Start).Dot(v) / denom
	return s.Start.Add(v.Scale(u)), nil
}
