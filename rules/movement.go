package rules

import (
	"errors"
	"fmt"
	"math"

	"github.com/brensch/snekline/game"
)

// ErrStepTooLong is returned when a single step would swallow the whole body.
var ErrStepTooLong = errors.New("step distance exceeds body length")

// ContractTail walks the polyline from the tail tip and removes distance
// worth of body. The returned slice is freshly allocated and excludes the
// old head; callers append the new head themselves.
func ContractTail(snake game.Snake, distance float64) (game.Snake, error) {
	if len(snake) < 2 {
		return nil, fmt.Errorf("contract tail: snake has %d points", len(snake))
	}
	end := len(snake) - 1
	remaining := distance
	for i := 0; i < end; i++ {
		seg := game.Segment{Start: snake[i], End: snake[i+1]}
		length := seg.Length()
		if remaining > length+game.Epsilon {
			remaining -= length
			continue
		}

		tail := make(game.Snake, 0, end-i+2)
		// A tip that lands on a vertex leaves that vertex as the new tip.
		if length-remaining > game.Epsilon {
			dir, err := seg.Vector().Normalize()
			if err != nil {
				return nil, fmt.Errorf("contract tail section %d: %w", i, err)
			}
			tail = append(tail, snake[i].Add(dir.Scale(remaining)))
		}
		tail = append(tail, snake[i+1:end]...)
		if len(tail) == 0 {
			return nil, ErrStepTooLong
		}
		return tail, nil
	}
	return nil, ErrStepTooLong
}

// Move advances state by distance along its heading, contracting the tail
// by the same amount. A turn request is applied when the head crosses a cell
// boundary during this step, with the bend placed exactly on the boundary.
// Otherwise the request is kept in state.Pending for a later step.
func Move(state *game.GameState, distance float64, movement game.Direction) error {
	if distance <= 0 {
		return nil
	}
	updatePending(state, movement)

	tail, err := ContractTail(state.Snake, distance)
	if err != nil {
		return err
	}

	oldHead := state.Snake.Head()
	heading := state.Direction.Vector()
	newHead := oldHead.Add(heading.Scale(distance))

	// A head section with no length yet cannot bend again; two bends on one
	// point would fold the snake back on itself.
	neck := game.Segment{Start: state.Snake[len(state.Snake)-2], End: oldHead}
	if state.Pending.Valid() && neck.Length() > game.Epsilon {
		if breakpoint, ok := cellBoundary(oldHead, newHead); ok {
			turned := state.Pending
			travelled := game.Segment{Start: oldHead, End: breakpoint}.Length()
			head := breakpoint.Add(turned.Vector().Scale(distance - travelled))

			state.Snake = append(tail, breakpoint, head)
			state.Direction = turned
			state.Pending = game.NoDirection
			return nil
		}
	}

	state.Snake = append(tail, newHead)
	return nil
}

// updatePending records a movement request. Repeating the current heading
// cancels any deferred turn; reversing is dropped.
func updatePending(state *game.GameState, movement game.Direction) {
	switch {
	case !movement.Valid():
	case movement == state.Direction:
		state.Pending = game.NoDirection
	case state.Direction.Vector().IsOpposite(movement.Vector()):
	default:
		state.Pending = movement
	}
}

// cellBoundary finds where the head leaves its rounded cell on the way from
// oldHead to newHead. The breakpoint keeps the old coordinate on the axis
// that does not change.
func cellBoundary(oldHead, newHead game.Vector) (game.Vector, bool) {
	if b, ok := boundary(oldHead.X, newHead.X); ok {
		return game.Vector{X: b, Y: oldHead.Y}, true
	}
	if b, ok := boundary(oldHead.Y, newHead.Y); ok {
		return game.Vector{X: oldHead.X, Y: b}, true
	}
	return game.Vector{}, false
}

func boundary(old, next float64) (float64, bool) {
	oldRounded := math.Round(old)
	newRounded := math.Round(next)
	if oldRounded == newRounded {
		return 0, false
	}
	if newRounded > oldRounded {
		return oldRounded + 0.5, true
	}
	return oldRounded - 0.5, true
}
