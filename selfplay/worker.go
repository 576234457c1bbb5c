// Package selfplay plays unattended games with the autopilot and records
// every tick as a store.TickRow.
package selfplay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/snekline/autopilot"
	"github.com/brensch/snekline/game"
	"github.com/brensch/snekline/rules"
	"github.com/brensch/snekline/store"
)

// End reasons reported in Result.Reason.
const (
	ReasonWall    = "wall"
	ReasonSelf    = "self"
	ReasonTickCap = "tick_cap"
	ReasonStopped = "stopped"
	ReasonNoFood  = "board_full"
)

const (
	DefaultFrame   = 16 * time.Millisecond
	DefaultMaxTick = 20000
)

type Result struct {
	GameID string
	Ticks  int64
	Score  int32
	Length float64
	Reason string
}

// InProgressGame is a resumable snapshot of a session that was stopped
// before it finished.
type InProgressGame struct {
	GameID  string          `json:"game_id"`
	State   *game.GameState `json:"state"`
	Rows    []store.TickRow `json:"rows"`
	RNGSeed int64           `json:"rng_seed"`
}

type Outcome struct {
	Completed  bool
	Rows       []store.TickRow
	Result     Result
	Checkpoint *InProgressGame
}

type Options struct {
	// Frame is the fixed elapsed time fed to the engine per tick.
	Frame time.Duration
	// MaxTicks ends the session early; 0 means DefaultMaxTick.
	MaxTicks int64
	Source   string
	Seed     int64
	Resume   *InProgressGame
	// Verbose logs the board every tick at debug level.
	Verbose bool
	Logger  *slog.Logger
	OnTick  func()
}

// PlaySession runs one game to completion, to the tick cap, or until ctx is
// cancelled. A cancelled session returns a checkpoint instead of rows.
func PlaySession(ctx context.Context, workerID int, settings rules.Settings, opts Options) (Outcome, error) {
	frame := opts.Frame
	if frame <= 0 {
		frame = DefaultFrame
	}
	maxTicks := opts.MaxTicks
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTick
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	source := opts.Source
	if source == "" {
		source = "selfplay"
	}

	var (
		gameID string
		state  *game.GameState
		seed   = opts.Seed
	)
	rows := make([]store.TickRow, 0, 1024)

	if r := opts.Resume; r != nil && r.State != nil && r.GameID != "" {
		gameID = r.GameID
		state = r.State.Clone()
		seed = r.RNGSeed
		rows = append(rows, r.Rows...)
	} else {
		if seed == 0 {
			seed = time.Now().UnixNano() + int64(workerID)*1000003
		}
		gameID = "selfplay_" + uuid.NewString()
	}
	rng := rand.New(rand.NewSource(seed))

	if state == nil {
		var err error
		state, err = rules.NewState(settings, rng)
		if err != nil {
			return Outcome{}, fmt.Errorf("new game: %w", err)
		}
	}

	pilot := autopilot.New(settings, rng)
	pilot.Explore = 0.02
	elapsed := float64(frame) / float64(time.Millisecond)
	log := logger.With("game_id", gameID, "worker", workerID)

	for !state.Over {
		select {
		case <-ctx.Done():
			return Outcome{
				Result: summarize(gameID, state, ReasonStopped),
				Checkpoint: &InProgressGame{
					GameID:  gameID,
					State:   state.Clone(),
					Rows:    append([]store.TickRow(nil), rows...),
					RNGSeed: rng.Int63(),
				},
			}, nil
		default:
		}

		if state.Ticks >= maxTicks {
			return Outcome{Completed: true, Rows: rows, Result: summarize(gameID, state, ReasonTickCap)}, nil
		}

		// Holding the heading cancels a deferred turn.
		movement := pilot.Decide(state)
		err := rules.Process(state, settings, elapsed, movement, rng)
		if errors.Is(err, rules.ErrNoFreeCell) {
			rows = append(rows, store.RowFromState(gameID, source, elapsed, movement, state))
			return Outcome{Completed: true, Rows: rows, Result: summarize(gameID, state, ReasonNoFood)}, nil
		}
		if err != nil {
			return Outcome{}, fmt.Errorf("tick %d: %w", state.Ticks, err)
		}
		rows = append(rows, store.RowFromState(gameID, source, elapsed, movement, state))

		if opts.Verbose {
			log.Debug("tick", "tick", state.Ticks, "head", state.Snake.Head(), "board", Board(state))
		}
		if opts.OnTick != nil {
			opts.OnTick()
		}
	}

	res := summarize(gameID, state, EndReason(state))
	log.Debug("game over", "ticks", res.Ticks, "score", res.Score, "reason", res.Reason)
	return Outcome{Completed: true, Rows: rows, Result: res}, nil
}

// EndReason classifies a finished state as a wall or a self collision.
func EndReason(state *game.GameState) string {
	h := state.Snake.Head()
	if h.X < 0 || h.X > float64(state.Width) || h.Y < 0 || h.Y > float64(state.Height) {
		return ReasonWall
	}
	return ReasonSelf
}

func summarize(gameID string, state *game.GameState, reason string) Result {
	length := 0.0
	for _, s := range rules.Segments(state.Snake) {
		length += s.Length()
	}
	return Result{
		GameID: gameID,
		Ticks:  state.Ticks,
		Score:  state.Score,
		Length: length,
		Reason: reason,
	}
}
