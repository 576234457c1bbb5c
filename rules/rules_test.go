package rules

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/brensch/snekline/game"
)

// dumpState renders the polyline and a coarse board for test logs.
func dumpState(state *game.GameState) string {
	if state == nil {
		return "<nil state>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Ticks=%d Size=%dx%d Dir=%s Pending=%s Score=%d Over=%v\n",
		state.Ticks, state.Width, state.Height, state.Direction, state.Pending, state.Score, state.Over)
	fmt.Fprintf(&b, "Food: (%.3f,%.3f)\n", state.Food.X, state.Food.Y)
	b.WriteString("Snake:")
	for _, p := range state.Snake {
		fmt.Fprintf(&b, " (%.3f,%.3f)", p.X, p.Y)
	}
	b.WriteString("\n")

	w, h := int(state.Width), int(state.Height)
	if w <= 0 || h <= 0 || w > 40 || h > 40 {
		return b.String()
	}
	segs := Segments(state.Snake)
	head := state.Snake.Head()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := game.Vector{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			switch {
			case math.Floor(head.X) == float64(x) && math.Floor(head.Y) == float64(y):
				b.WriteByte('H')
			case c.Equal(state.Food):
				b.WriteByte('F')
			case covered(c, segs):
				b.WriteByte('o')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func covered(p game.Vector, segs []game.Segment) bool {
	for _, s := range segs {
		if s.Contains(p) {
			return true
		}
	}
	return false
}

func testSettings() Settings {
	s := DefaultSettings
	s.Speed = 1
	return s
}

func testState(dir game.Direction, food game.Vector, points ...game.Vector) *game.GameState {
	return &game.GameState{
		Width:     17,
		Height:    15,
		Speed:     1,
		Snake:     game.Snake(points),
		Direction: dir,
		Pending:   game.NoDirection,
		Food:      food,
	}
}

func assertSnake(t *testing.T, got game.Snake, want ...game.Vector) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("snake len=%d want=%d (got %v)", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("snake[%d]=%v want=%v (got %v)", i, got[i], want[i], got)
		}
	}
}

func TestNewGame_DefaultOpening(t *testing.T) {
	g, err := NewGame(DefaultSettings, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	t.Logf("opening:\n%s", dumpState(g.State()))

	assertSnake(t, g.Snake(), game.Vector{X: 5.5, Y: 7.5}, game.Vector{X: 8.5, Y: 7.5})
	if g.IsOver() {
		t.Fatalf("fresh game must not be over")
	}
	if g.Direction() != game.Right || g.Score() != 0 {
		t.Fatalf("direction=%s score=%d", g.Direction(), g.Score())
	}
	food := g.Food()
	if math.Mod(food.X, 1) != 0.5 || math.Mod(food.Y, 1) != 0.5 {
		t.Fatalf("food %v is not a cell centre", food)
	}
	if !IsFree(food, g.Snake()) {
		t.Fatalf("food %v placed on the body", food)
	}
	over, err := IsGameOver(g.State(), g.Settings())
	if err != nil || over {
		t.Fatalf("IsGameOver=%v,%v want false,nil", over, err)
	}
}

func TestNewGame_RejectsBadSettings(t *testing.T) {
	bad := DefaultSettings
	bad.Speed = 0
	if _, err := NewGame(bad, nil); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("err=%v want ErrInvalidSettings", err)
	}
	bad = DefaultSettings
	bad.Direction = game.NoDirection
	if _, err := NewGame(bad, nil); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("err=%v want ErrInvalidSettings", err)
	}
	bad = DefaultSettings
	bad.MaxStepDistance = 3
	if err := bad.Validate(); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("err=%v want ErrInvalidSettings", err)
	}
}

func TestProcess_ReverseIsIgnored(t *testing.T) {
	for _, dir := range []game.Direction{game.Up, game.Right, game.Down, game.Left} {
		settings := testSettings()
		settings.Direction = dir
		g, err := NewGame(settings, rand.New(rand.NewSource(7)))
		if err != nil {
			t.Fatalf("new game: %v", err)
		}
		for i := 0; i < 5; i++ {
			if err := g.Process(0.3, dir.Opposite()); err != nil {
				t.Fatalf("process: %v", err)
			}
			if g.Direction() != dir {
				t.Fatalf("reverse request changed direction %s -> %s", dir, g.Direction())
			}
			if g.State().Pending != game.NoDirection {
				t.Fatalf("reverse request was queued: %s", g.State().Pending)
			}
		}
	}
}

func TestProcess_WallEndsGame(t *testing.T) {
	state := testState(game.Left, game.Vector{X: 16.5, Y: 14.5},
		game.Vector{X: 3, Y: 5}, game.Vector{X: 0.3, Y: 5})
	settings := testSettings()

	if err := Process(state, settings, 0.2, game.NoDirection, nil); err != nil {
		t.Fatalf("process: %v", err)
	}
	if state.Over {
		t.Fatalf("head at x=%v is still on the board", state.Snake.Head().X)
	}
	if err := Process(state, settings, 0.2, game.NoDirection, nil); err != nil {
		t.Fatalf("process: %v", err)
	}
	t.Logf("after wall:\n%s", dumpState(state))
	if !state.Over {
		t.Fatalf("head at x=%v crossed the wall but game is not over", state.Snake.Head().X)
	}
	if err := Process(state, settings, 0.2, game.NoDirection, nil); !errors.Is(err, ErrGameOver) {
		t.Fatalf("err=%v want ErrGameOver", err)
	}
}

func TestIsGameOver_SelfCollisionLoop(t *testing.T) {
	settings := testSettings()
	loop := func(headY float64) *game.GameState {
		return testState(game.Up, game.Vector{X: 16.5, Y: 14.5},
			game.Vector{X: 1.5, Y: 1.5},
			game.Vector{X: 5.5, Y: 1.5},
			game.Vector{X: 5.5, Y: 3.5},
			game.Vector{X: 3.5, Y: 3.5},
			game.Vector{X: 3.5, Y: headY},
		)
	}

	near := loop(1.9)
	over, err := IsGameOver(near, settings)
	if err != nil {
		t.Fatalf("IsGameOver: %v", err)
	}
	if !over {
		t.Fatalf("head 0.4 from the body should collide:\n%s", dumpState(near))
	}

	far := loop(2.1)
	over, err = IsGameOver(far, settings)
	if err != nil {
		t.Fatalf("IsGameOver: %v", err)
	}
	if over {
		t.Fatalf("head 0.6 from the body should not collide:\n%s", dumpState(far))
	}
}

func TestProcess_HeadRunsIntoBody(t *testing.T) {
	state := testState(game.Up, game.Vector{X: 16.5, Y: 14.5},
		game.Vector{X: 1.5, Y: 1.5},
		game.Vector{X: 5.5, Y: 1.5},
		game.Vector{X: 5.5, Y: 3.5},
		game.Vector{X: 3.5, Y: 3.5},
		game.Vector{X: 3.5, Y: 2.1},
	)
	if err := Process(state, testSettings(), 0.2, game.NoDirection, nil); err != nil {
		t.Fatalf("process: %v", err)
	}
	t.Logf("after bite:\n%s", dumpState(state))
	if !state.Over {
		t.Fatalf("head at %v should have hit the body", state.Snake.Head())
	}
}

func TestProcess_EatFoodGrowsTail(t *testing.T) {
	state := testState(game.Right, game.Vector{X: 9.5, Y: 7.5},
		game.Vector{X: 5.5, Y: 7.5}, game.Vector{X: 8.5, Y: 7.5})
	before := state.Snake.Length()

	if err := Process(state, testSettings(), 1, game.NoDirection, rand.New(rand.NewSource(3))); err != nil {
		t.Fatalf("process: %v", err)
	}
	t.Logf("after eating:\n%s", dumpState(state))

	if state.Score != 1 {
		t.Fatalf("score=%d want=1", state.Score)
	}
	assertSnake(t, state.Snake, game.Vector{X: 5.5, Y: 7.5}, game.Vector{X: 9.5, Y: 7.5})
	if got := state.Snake.Length(); math.Abs(got-(before+1)) > 1e-9 {
		t.Fatalf("length=%v want=%v", got, before+1)
	}
	if !IsFree(state.Food, state.Snake) {
		t.Fatalf("new food %v is on the grown body", state.Food)
	}
}

// TestProcess_Invariants drives many random sessions and checks, on every
// tick, that growth is the only thing that changes body length, that the
// stored direction matches the head section, and that every interior vertex
// sits on a half-integer coordinate.
func TestProcess_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	settings := DefaultSettings
	moves := []game.Direction{game.NoDirection, game.Up, game.Right, game.Down, game.Left}

	for session := 0; session < 20; session++ {
		g, err := NewGame(settings, rng)
		if err != nil {
			t.Fatalf("new game: %v", err)
		}
		for tick := 0; tick < 3000 && !g.IsOver(); tick++ {
			before := g.State()
			elapsed := 5 + rng.Float64()*40
			move := moves[rng.Intn(len(moves))]

			if err := g.Process(elapsed, move); err != nil {
				t.Fatalf("session %d tick %d: %v\n%s", session, tick, err, dumpState(before))
			}
			after := g.State()

			grew := float64(after.Score - before.Score)
			delta := after.Snake.Length() - before.Snake.Length()
			if math.Abs(delta-grew) > 1e-6 {
				t.Fatalf("session %d tick %d: length changed by %v with %v growth\nBEFORE:\n%sAFTER:\n%s",
					session, tick, delta, grew, dumpState(before), dumpState(after))
			}
			if len(after.Snake) < 2 || !after.Direction.Valid() {
				t.Fatalf("session %d tick %d: broken state\n%s", session, tick, dumpState(after))
			}

			n := len(after.Snake)
			neck := game.Segment{Start: after.Snake[n-2], End: after.Snake[n-1]}
			if neck.Length() > game.Epsilon {
				dir, err := neck.Vector().Normalize()
				if err != nil {
					t.Fatalf("normalize neck: %v", err)
				}
				if !dir.Equal(after.Direction.Vector()) {
					t.Fatalf("session %d tick %d: head section %v does not match direction %s",
						session, tick, dir, after.Direction)
				}
			}

			for i := 1; i < n-1; i++ {
				v := after.Snake[i]
				if !isHalf(v.X) || !isHalf(v.Y) {
					t.Fatalf("session %d tick %d: bend %v off cell centre lines\n%s",
						session, tick, v, dumpState(after))
				}
			}
		}
	}
}

func isHalf(f float64) bool {
	frac := f - math.Floor(f)
	return math.Abs(frac-0.5) < 1e-6
}
