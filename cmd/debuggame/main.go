// debuggame plays a single autopilot game in real time through a
// session.Runner, logging the board as it goes, and writes the trace to one
// parquet file.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/snekline/autopilot"
	"github.com/brensch/snekline/logging"
	"github.com/brensch/snekline/rules"
	"github.com/brensch/snekline/selfplay"
	"github.com/brensch/snekline/session"
	"github.com/brensch/snekline/store"
)

func main() {
	outDir := flag.String("out-dir", filepath.Join("debug_games"), "Output directory for debug traces")
	frame := flag.Duration("frame", selfplay.DefaultFrame, "Wall-clock interval between ticks")
	seed := flag.Int64("seed", 0, "Food seed (0 uses the clock)")
	timeout := flag.Duration("timeout", 5*time.Minute, "Give up after this long")
	pauseEvery := flag.Int("pause-every", 0, "If > 0, pause for one frame every N ticks")
	logFormat := flag.String("log-format", "pretty", "Log format: pretty, json or text")
	logLevel := flag.String("log-level", "debug", "Log level")
	flag.Parse()

	logger, err := logging.New(os.Stderr, *logFormat, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	runner, err := session.NewRunner(rules.DefaultSettings, rng)
	if err != nil {
		logger.Error("start session", "err", err)
		os.Exit(1)
	}
	pilot := autopilot.New(runner.Settings, rng)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(sigCtx, *timeout)
	defer cancel()

	gameID := "debug_" + uuid.NewString()
	rows := make([]store.TickRow, 0, 4096)
	logger.Info("playing debug game", "game_id", gameID, "seed", *seed, "frame", *frame)

	ticker := time.NewTicker(*frame)
	defer ticker.Stop()

	reason := ""
	for reason == "" {
		select {
		case <-ctx.Done():
			reason = selfplay.ReasonStopped
			continue
		case now := <-ticker.C:
			state := runner.Game().State()
			movement := pilot.Decide(state)

			if *pauseEvery > 0 && state.Ticks > 0 && state.Ticks%int64(*pauseEvery) == 0 && !runner.Paused() {
				runner.TogglePause(now)
				logger.Debug("paused", "tick", state.Ticks)
				continue
			}
			if runner.Paused() {
				runner.TogglePause(now)
			}

			res, err := runner.Tick(now, movement)
			if err != nil {
				logger.Error("tick failed", "err", err)
				os.Exit(1)
			}
			if !res.Advanced {
				continue
			}

			elapsedMs := float64(res.Elapsed) / float64(time.Millisecond)
			if res.Ended {
				rows = append(rows, store.RowFromState(gameID, "debug", elapsedMs, movement, res.EndState))
				reason = selfplay.EndReason(res.EndState)
				logger.Info("game over", "score", res.EndState.Score, "ticks", res.EndState.Ticks, "reason", reason,
					"board", selfplay.Board(res.EndState))
				continue
			}
			cur := runner.Game().State()
			rows = append(rows, store.RowFromState(gameID, "debug", elapsedMs, movement, cur))
			logger.Debug("tick", "tick", cur.Ticks, "head", cur.Snake.Head(), "dir", cur.Direction.String(),
				"board", selfplay.Board(cur))
		}
	}

	path := filepath.Join(*outDir, gameID+".parquet")
	if err := store.WriteTraceParquet(path, rows); err != nil {
		logger.Error("write trace", "err", err)
		os.Exit(1)
	}
	logger.Info("debug trace written", "path", path, "rows", len(rows), "reason", reason, "best_score", runner.BestScore())
}
