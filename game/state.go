// Package game defines the value types of the continuous snake engine.
//
// The snake is a polyline of real-valued points rather than a list of grid
// cells. Turns land exactly on half-integer coordinates, so the body still
// looks grid aligned while the head moves smoothly between frames. The state
// is cheap to clone so callers can look ahead without touching the live game.
package game

// Snake is an ordered polyline from the tail tip (index 0) to the head (last
// index). A live snake always has at least two points.
type Snake []Vector

// Head returns the last point.
func (s Snake) Head() Vector {
	return s[len(s)-1]
}

// Tail returns the tail tip.
func (s Snake) Tail() Vector {
	return s[0]
}

// Length is the total length of all body sections.
func (s Snake) Length() float64 {
	total := 0.0
	for i := 0; i+1 < len(s); i++ {
		total += Segment{Start: s[i], End: s[i+1]}.Length()
	}
	return total
}

func (s Snake) Clone() Snake {
	if s == nil {
		return nil
	}
	out := make(Snake, len(s))
	copy(out, s)
	return out
}

// GameState is everything the engine mutates on a tick.
// Pending holds a turn request that has not reached a cell boundary yet.
type GameState struct {
	Width     int32
	Height    int32
	Speed     float64
	Snake     Snake
	Direction Direction
	Pending   Direction
	Food      Vector
	Score     int32
	Over      bool
	Ticks     int64
}

// Clone performs a deep copy of the game state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	out.Snake = s.Snake.Clone()
	return &out
}
