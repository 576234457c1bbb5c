// visualize.go - Console rendering of a continuous snake for debugging.
package selfplay

import (
	"fmt"
	"math"
	"strings"

	"github.com/brensch/snekline/game"
	"github.com/brensch/snekline/rules"
)

// Board renders state as a grid of cells. A cell is body ('o') when its
// centre lies on the polyline, 'O' marks the cell holding the head and 'F'
// the food.
func Board(state *game.GameState) string {
	grid := make([][]byte, state.Height)
	for y := range grid {
		grid[y] = make([]byte, state.Width)
		for x := range grid[y] {
			grid[y][x] = '.'
		}
	}

	segs := rules.Segments(state.Snake)
	for y := range grid {
		for x := range grid[y] {
			c := game.Vector{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			for _, s := range segs {
				if s.Contains(c) {
					grid[y][x] = 'o'
					break
				}
			}
		}
	}

	if fx, fy := cellOf(state.Food); isBounds(state, fx, fy) {
		grid[fy][fx] = 'F'
	}
	if len(state.Snake) > 0 {
		if hx, hy := cellOf(state.Snake.Head()); isBounds(state, hx, hy) {
			grid[hy][hx] = 'O'
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Tick %d score=%d dir=%s pending=%s over=%v ===\n",
		state.Ticks, state.Score, state.Direction, state.Pending, state.Over)
	// Row 0 is the top of the board; Up decreases y.
	for y := range grid {
		for x := range grid[y] {
			sb.WriteByte(grid[y][x])
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func cellOf(p game.Vector) (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y))
}

func isBounds(state *game.GameState, x, y int) bool {
	return x >= 0 && x < int(state.Width) && y >= 0 && y < int(state.Height)
}
