package rules

import (
	"errors"
	"fmt"

	"github.com/brensch/snekline/game"
)

// ErrInvalidSettings is wrapped by every Settings.Validate failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings controls board geometry, pacing and collision tuning.
//
// CollisionSkip and CollisionRadius are tuned constants: the head is never
// tested against the CollisionSkip sections closest to it, and a body section
// closer than CollisionRadius (half a cell) counts as a hit. The head section
// itself may be momentarily empty right after a bend, so at least one section
// is always skipped.
// MaxStepDistance bounds how far the head may travel in one sub-step.
type Settings struct {
	Width           int32
	Height          int32
	Speed           float64 // distance units per time unit
	InitialLength   int32
	Direction       game.Direction
	CollisionSkip   int
	CollisionRadius float64
	MaxStepDistance float64
}

// DefaultSettings matches the classic board: 17x15 cells, a three cell snake
// heading right at 0.006 cells per millisecond.
var DefaultSettings = Settings{
	Width:           17,
	Height:          15,
	Speed:           0.006,
	InitialLength:   3,
	Direction:       game.Right,
	CollisionSkip:   3,
	CollisionRadius: 0.5,
	MaxStepDistance: 0.5,
}

func (s Settings) Validate() error {
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: board %dx%d", ErrInvalidSettings, s.Width, s.Height)
	case s.Speed <= 0:
		return fmt.Errorf("%w: speed %v", ErrInvalidSettings, s.Speed)
	case s.InitialLength <= 0:
		return fmt.Errorf("%w: initial length %d", ErrInvalidSettings, s.InitialLength)
	case !s.Direction.Valid():
		return fmt.Errorf("%w: direction %v", ErrInvalidSettings, s.Direction)
	case s.CollisionSkip < 1:
		return fmt.Errorf("%w: collision skip %d", ErrInvalidSettings, s.CollisionSkip)
	case s.CollisionRadius <= 0:
		return fmt.Errorf("%w: collision radius %v", ErrInvalidSettings, s.CollisionRadius)
	case s.MaxStepDistance <= 0 || s.MaxStepDistance >= float64(s.InitialLength):
		return fmt.Errorf("%w: max step %v must be in (0, %d)", ErrInvalidSettings, s.MaxStepDistance, s.InitialLength)
	}
	return nil
}
