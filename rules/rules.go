package rules

import (
	"errors"
	"fmt"
	"math"

	"github.com/brensch/snekline/game"
)

// ErrGameOver is returned by Process once the game has ended.
var ErrGameOver = errors.New("game is over")

// NewState builds the opening position: the head sits on the cell centre
// nearest the middle of the board, the tail tip InitialLength cells behind it,
// and food on a free cell.
func NewState(settings Settings, rng Rand) (*game.GameState, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	head := game.Vector{
		X: math.Round(float64(settings.Width)/2) - 0.5,
		Y: math.Round(float64(settings.Height)/2) - 0.5,
	}
	tailTip := head.Sub(settings.Direction.Vector().Scale(float64(settings.InitialLength)))

	state := &game.GameState{
		Width:     settings.Width,
		Height:    settings.Height,
		Speed:     settings.Speed,
		Snake:     game.Snake{tailTip, head},
		Direction: settings.Direction,
		Pending:   game.NoDirection,
	}
	food, err := PlaceFood(state.Width, state.Height, state.Snake, rng)
	if err != nil {
		return nil, fmt.Errorf("initial food: %w", err)
	}
	state.Food = food
	return state, nil
}

// IsGameOver reports whether the head has left the board or run into the
// body. Bodies with fewer than five points cannot fold back onto themselves.
func IsGameOver(state *game.GameState, settings Settings) (bool, error) {
	head := state.Snake.Head()
	if head.X < 0 || head.X > float64(state.Width) || head.Y < 0 || head.Y > float64(state.Height) {
		return true, nil
	}
	if len(state.Snake) < 5 {
		return false, nil
	}
	hit, err := SelfCollides(state.Snake, settings.CollisionSkip, settings.CollisionRadius)
	if err != nil {
		return false, fmt.Errorf("self collision: %w", err)
	}
	return hit, nil
}

// Step runs one movement + food + terminal check over distance. The distance
// must not exceed the body length.
func Step(state *game.GameState, settings Settings, distance float64, movement game.Direction, rng Rand) error {
	if err := Move(state, distance, movement); err != nil {
		return fmt.Errorf("move: %w", err)
	}
	if _, err := EatFood(state, rng); err != nil {
		return fmt.Errorf("food: %w", err)
	}
	over, err := IsGameOver(state, settings)
	if err != nil {
		return err
	}
	state.Over = over
	return nil
}

// Process advances state by speed*elapsed. Long frames are split into
// sub-steps of at most settings.MaxStepDistance so a turn or a collision is
// never stepped over. Processing stops at the first sub-step that ends the
// game.
func Process(state *game.GameState, settings Settings, elapsed float64, movement game.Direction, rng Rand) error {
	if state.Over {
		return ErrGameOver
	}
	state.Ticks++
	distance := state.Speed * elapsed
	if distance <= 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		return nil
	}
	steps := 1
	if settings.MaxStepDistance > 0 {
		steps = int(math.Ceil(distance / settings.MaxStepDistance))
	}
	each := distance / float64(steps)
	for i := 0; i < steps && !state.Over; i++ {
		if err := Step(state, settings, each, movement, rng); err != nil {
			return err
		}
	}
	return nil
}

// Game binds a state to its settings and random source. It is the surface a
// host drives once per frame.
type Game struct {
	settings Settings
	rng      Rand
	state    *game.GameState
}

// NewGame starts a session. rng may be nil for deterministic food.
func NewGame(settings Settings, rng Rand) (*Game, error) {
	state, err := NewState(settings, rng)
	if err != nil {
		return nil, err
	}
	return &Game{settings: settings, rng: rng, state: state}, nil
}

// Process feeds one frame: elapsed time units and an optional turn request
// (game.NoDirection for none).
func (g *Game) Process(elapsed float64, movement game.Direction) error {
	return Process(g.state, g.settings, elapsed, movement, g.rng)
}

func (g *Game) IsOver() bool { return g.state.Over }

// Snake returns a copy of the current polyline.
func (g *Game) Snake() game.Snake { return g.state.Snake.Clone() }

// State returns a snapshot of the full state.
func (g *Game) State() *game.GameState { return g.state.Clone() }

func (g *Game) Settings() Settings { return g.settings }

func (g *Game) Direction() game.Direction { return g.state.Direction }

func (g *Game) Food() game.Vector { return g.state.Food }

func (g *Game) Score() int32 { return g.state.Score }
