// Package session drives a rules.Game from wall-clock ticks the way a host
// frame loop does: it turns successive timestamps into elapsed time, supports
// pausing without feeding the paused interval to the engine, restarts after a
// game ends and remembers the best score of the run.
package session

import (
	"fmt"
	"time"

	"github.com/brensch/snekline/game"
	"github.com/brensch/snekline/rules"
)

// DefaultMaxFrame caps the elapsed time of a single tick. A host that stalls
// (tab in background, debugger) resumes with one capped frame instead of a jump.
const DefaultMaxFrame = 250 * time.Millisecond

// TickResult describes what happened on one tick.
type TickResult struct {
	Elapsed   time.Duration
	Advanced  bool
	Ended     bool // the game finished on this tick and was replaced
	EndState  *game.GameState
	Restarted bool
}

// Runner owns one game at a time. It is not safe for concurrent use.
type Runner struct {
	Settings rules.Settings
	Rng      rules.Rand
	MaxFrame time.Duration

	game       *rules.Game
	lastUpdate time.Time
	stoppedAt  time.Time
	bestScore  int32
	games      int
}

// NewRunner starts the first game.
func NewRunner(settings rules.Settings, rng rules.Rand) (*Runner, error) {
	r := &Runner{Settings: settings, Rng: rng, MaxFrame: DefaultMaxFrame}
	if err := r.Restart(); err != nil {
		return nil, err
	}
	return r, nil
}

// Restart throws the current game away and clears the clock.
func (r *Runner) Restart() error {
	g, err := rules.NewGame(r.Settings, r.Rng)
	if err != nil {
		return fmt.Errorf("restart: %w", err)
	}
	r.game = g
	r.lastUpdate = time.Time{}
	r.stoppedAt = time.Time{}
	r.games++
	return nil
}

func (r *Runner) Game() *rules.Game { return r.game }

func (r *Runner) BestScore() int32 { return r.bestScore }

// Games counts every game started, including the current one.
func (r *Runner) Games() int { return r.games }

func (r *Runner) Paused() bool { return !r.stoppedAt.IsZero() }

// TogglePause stops or resumes the clock. On resume the last update is shifted
// forward by the time spent paused.
func (r *Runner) TogglePause(now time.Time) {
	if r.stoppedAt.IsZero() {
		r.stoppedAt = now
		return
	}
	if !r.lastUpdate.IsZero() {
		r.lastUpdate = r.lastUpdate.Add(now.Sub(r.stoppedAt))
	}
	r.stoppedAt = time.Time{}
}

// Tick advances the game to now. The first tick after a (re)start only arms
// the clock. A finished game is replaced by a fresh one before Tick returns.
func (r *Runner) Tick(now time.Time, movement game.Direction) (TickResult, error) {
	if r.Paused() {
		return TickResult{}, nil
	}
	if r.lastUpdate.IsZero() {
		r.lastUpdate = now
		return TickResult{}, nil
	}

	elapsed := now.Sub(r.lastUpdate)
	r.lastUpdate = now
	if elapsed <= 0 {
		return TickResult{}, nil
	}
	if r.MaxFrame > 0 && elapsed > r.MaxFrame {
		elapsed = r.MaxFrame
	}

	res := TickResult{Elapsed: elapsed, Advanced: true}
	if err := r.game.Process(millis(elapsed), movement); err != nil {
		return res, err
	}
	if s := r.game.Score(); s > r.bestScore {
		r.bestScore = s
	}
	if r.game.IsOver() {
		res.Ended = true
		res.EndState = r.game.State()
		if err := r.Restart(); err != nil {
			return res, err
		}
		res.Restarted = true
	}
	return res, nil
}

// millis converts to the engine's time unit; speeds are cells per millisecond.
func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
