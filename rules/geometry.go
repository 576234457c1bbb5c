package rules

import (
	"fmt"

	"github.com/brensch/snekline/game"
)

// Segments returns the body sections between consecutive snake points.
func Segments(snake game.Snake) []game.Segment {
	if len(snake) < 2 {
		return nil
	}
	out := make([]game.Segment, 0, len(snake)-1)
	for i := 0; i+1 < len(snake); i++ {
		out = append(out, game.Segment{Start: snake[i], End: snake[i+1]})
	}
	return out
}

// IsFree reports whether no body section passes through p.
func IsFree(p game.Vector, snake game.Snake) bool {
	for _, seg := range Segments(snake) {
		if seg.Contains(p) {
			return false
		}
	}
	return true
}

// SelfCollides tests the head against the body, treating the body as a tube
// of the given radius. The skip sections nearest the head are never tested,
// since the head always touches its own neck.
func SelfCollides(snake game.Snake, skip int, radius float64) (bool, error) {
	if len(snake) < 2 {
		return false, nil
	}
	head := snake.Head()
	last := len(snake) - skip
	if last < 1 {
		return false, nil
	}
	for i, seg := range Segments(snake[:last]) {
		projected, err := seg.Project(head)
		if err != nil {
			return false, fmt.Errorf("body section %d: %w", i, err)
		}
		if !seg.Contains(projected) {
			continue
		}
		if (game.Segment{Start: head, End: projected}).Length() < radius {
			return true, nil
		}
	}
	return false, nil
}
