package rules

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/brensch/snekline/game"
)

// ErrNoFreeCell is returned when every cell centre is covered by the body.
var ErrNoFreeCell = errors.New("no free cell for food")

// Rand is the random source used for food placement. *rand.Rand satisfies it.
//
// Callers pick between true randomness for play and a seeded source for tests.
// A nil Rand falls back to a deterministic hash of the board, which keeps
// replays of the same input stable.
type Rand interface {
	Intn(n int) int
}

// FreeCells lists every cell centre not covered by the snake, in column-major
// order.
func FreeCells(width, height int32, snake game.Snake) []game.Vector {
	segs := Segments(snake)
	free := make([]game.Vector, 0, int(width*height))
	for x := int32(0); x < width; x++ {
		for y := int32(0); y < height; y++ {
			p := game.Vector{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			covered := false
			for _, seg := range segs {
				if seg.Contains(p) {
					covered = true
					break
				}
			}
			if !covered {
				free = append(free, p)
			}
		}
	}
	return free
}

// PlaceFood picks a free cell centre uniformly at random.
func PlaceFood(width, height int32, snake game.Snake, rng Rand) (game.Vector, error) {
	free := FreeCells(width, height, snake)
	if len(free) == 0 {
		return game.Vector{}, ErrNoFreeCell
	}
	var idx int
	if rng != nil {
		idx = rng.Intn(len(free))
	} else {
		idx = int(boardHash(snake, 0x464F4F44) % uint64(len(free))) // "FOOD"
	}
	return free[idx], nil
}

// EatFood grows the snake when the head section passes over the food. The
// tail tip is pushed back by one unit along the tail's own direction, the food
// moves to a cell that is free on the grown body, and the score goes up.
// It reports whether food was eaten.
func EatFood(state *game.GameState, rng Rand) (bool, error) {
	n := len(state.Snake)
	if n < 2 {
		return false, fmt.Errorf("eat food: snake has %d points", n)
	}
	head := game.Segment{Start: state.Snake[n-2], End: state.Snake[n-1]}
	if !head.Contains(state.Food) {
		return false, nil
	}

	tailTip, beforeTip := state.Snake[0], state.Snake[1]
	back, err := tailTip.Sub(beforeTip).Normalize()
	if err != nil {
		return false, fmt.Errorf("grow tail: %w", err)
	}
	state.Snake[0] = tailTip.Add(back)
	state.Score++

	food, err := PlaceFood(state.Width, state.Height, state.Snake, rng)
	if err != nil {
		return true, err
	}
	state.Food = food
	return true, nil
}

func boardHash(snake game.Snake, salt uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], salt)
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(len(snake)))
	_, _ = h.Write(buf[:])
	for _, p := range snake {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.X))
		_, _ = h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.Y))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
