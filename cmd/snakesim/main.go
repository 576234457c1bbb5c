package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snekline/logging"
	"github.com/brensch/snekline/rules"
	"github.com/brensch/snekline/selfplay"
	"github.com/brensch/snekline/store"
)

var totalTicks atomic.Int64
var totalGames atomic.Int64

type gameWriteRequest struct {
	rows []store.TickRow
}

func main() {
	outDir := flag.String("out-dir", "data/traces", "Output directory for trace parquet batches")
	workers := flag.Int("workers", 8, "Number of self-play workers")
	gamesPerFlush := flag.Int("games-per-flush", 50, "Number of games per parquet batch file")
	maxGames := flag.Int64("max-games", 0, "If > 0, stop after this many games (across all workers)")
	maxTicks := flag.Int64("max-ticks", selfplay.DefaultMaxTick, "Tick cap per game")
	frame := flag.Duration("frame", selfplay.DefaultFrame, "Elapsed time fed to the engine per tick")
	width := flag.Int("width", int(rules.DefaultSettings.Width), "Board width in cells")
	height := flag.Int("height", int(rules.DefaultSettings.Height), "Board height in cells")
	speed := flag.Float64("speed", rules.DefaultSettings.Speed, "Snake speed in cells per millisecond")
	tui := flag.Bool("tui", false, "Show a live dashboard instead of periodic log lines")
	logFormat := flag.String("log-format", "pretty", "Log format: pretty, json or text")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	// The dashboard owns the terminal, so logs go to a file while it runs.
	var logOut io.Writer = os.Stderr
	if *tui {
		f, err := os.OpenFile("snakesim.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := logging.New(logOut, *logFormat, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	settings := rules.DefaultSettings
	settings.Width = int32(*width)
	settings.Height = int32(*height)
	settings.Speed = *speed
	if err := settings.Validate(); err != nil {
		logger.Error("invalid settings", "err", err)
		os.Exit(2)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	logger.Info("starting self-play", "workers", *workers, "out_dir", *outDir, "width", settings.Width, "height", settings.Height, "frame", *frame)

	updates := make(chan GameUpdate, *workers)
	writeReqs := make(chan gameWriteRequest, (*workers)*4)

	writerDone := make(chan struct{})
	go func() {
		parquetWriterLoop(logger, *outDir, *gamesPerFlush, writeReqs)
		close(writerDone)
	}()

	var workerWG sync.WaitGroup
	for i := 0; i < *workers; i++ {
		workerWG.Add(1)
		go func(workerID int) {
			defer workerWG.Done()
			opts := selfplay.Options{
				Frame:    *frame,
				MaxTicks: *maxTicks,
				Logger:   logger,
				Verbose:  workerID == 0,
				OnTick:   func() { totalTicks.Add(1) },
			}
			for ctx.Err() == nil {
				out, err := selfplay.PlaySession(ctx, workerID, settings, opts)
				if err != nil {
					logger.Error("session failed", "worker", workerID, "err", err)
					return
				}
				if !out.Completed {
					logger.Info("session stopped", "worker", workerID, "game_id", out.Result.GameID, "ticks", out.Result.Ticks)
					return
				}

				total := totalGames.Add(1)
				if *maxGames > 0 && total >= *maxGames {
					cancel()
				}
				writeReqs <- gameWriteRequest{rows: out.Rows}

				// Drop updates rather than block shutdown on a stalled consumer.
				select {
				case updates <- GameUpdate{WorkerID: workerID, Result: out.Result, Rows: len(out.Rows)}:
				default:
				}
			}
		}(i)
	}

	shutdown := func() {
		logger.Info("shutdown requested; waiting for workers")
		workerWG.Wait()
		close(writeReqs)
		<-writerDone
		logger.Info("shutdown complete", "games", totalGames.Load(), "ticks", totalTicks.Load())
	}

	if *tui {
		p := tea.NewProgram(initialModel(updates, cancel), tea.WithAltScreen())
		go func() {
			<-ctx.Done()
			p.Quit()
		}()
		if _, err := p.Run(); err != nil {
			logger.Error("dashboard failed", "err", err)
		}
		cancel()
		shutdown()
		return
	}

	startTime := time.Now()
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdown()
			return
		case u := <-updates:
			logger.Info("game finished", "worker", u.WorkerID, "game_id", u.Result.GameID,
				"score", u.Result.Score, "ticks", u.Result.Ticks, "reason", u.Result.Reason)
		case <-ticker.C:
			secs := time.Since(startTime).Seconds()
			logger.Info("stats",
				"games", totalGames.Load(),
				"ticks_per_sec", float64(totalTicks.Load())/secs,
				"games_per_sec", float64(totalGames.Load())/secs)
		}
	}
}

func parquetWriterLoop(logger *slog.Logger, outDir string, gamesPerFlush int, in <-chan gameWriteRequest) {
	if gamesPerFlush <= 0 {
		gamesPerFlush = 50
	}

	var w *store.BatchWriter
	flush := func() {
		if w == nil {
			return
		}
		outPath, rows, games, err := w.Finalize()
		w = nil
		if err != nil {
			logger.Error("parquet flush failed", "err", err)
			return
		}
		if rows > 0 {
			logger.Info("parquet flush ok", "path", outPath, "games", games, "rows", rows)
		}
	}

	for req := range in {
		if len(req.rows) == 0 {
			continue
		}
		if w == nil {
			var err error
			w, err = store.NewBatchWriter(outDir)
			if err != nil {
				logger.Error("open batch writer", "err", err)
				continue
			}
		}
		if err := w.WriteGame(req.rows); err != nil {
			logger.Error("write game", "err", err, "rows", len(req.rows))
			continue
		}
		if w.BufferedGames() >= gamesPerFlush {
			flush()
		}
	}
	flush()
}
