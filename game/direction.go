package game

// Direction is one of the four grid headings. NoDirection is only used as a
// movement request meaning "keep going".
type Direction int8

const (
	NoDirection Direction = iota - 1
	Up
	Right
	Down
	Left
)

var headings = [...]Vector{
	Up:    {X: 0, Y: -1},
	Right: {X: 1, Y: 0},
	Down:  {X: 0, Y: 1},
	Left:  {X: -1, Y: 0},
}

var directionNames = [...]string{"up", "right", "down", "left"}

// Valid reports whether d is one of the four headings.
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

// Vector returns the unit vector for d. It returns the zero vector for
// NoDirection.
func (d Direction) Vector() Vector {
	if !d.Valid() {
		return Vector{}
	}
	return headings[d]
}

// Opposite returns the heading pointing the other way.
func (d Direction) Opposite() Direction {
	if !d.Valid() {
		return NoDirection
	}
	return (d + 2) % 4
}

func (d Direction) String() string {
	if !d.Valid() {
		return "none"
	}
	return directionNames[d]
}

// ParseDirection maps a name produced by String back to a Direction.
func ParseDirection(s string) (Direction, bool) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), true
		}
	}
	return NoDirection, s == "none" || s == ""
}
