// tracestat summarizes trace parquet files written by snakesim or debuggame.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/brensch/snekline/game"
	"github.com/brensch/snekline/logging"
	"github.com/brensch/snekline/rules"
	"github.com/brensch/snekline/selfplay"
	"github.com/brensch/snekline/store"
)

type gameSummary struct {
	GameID string
	Source string
	Ticks  int64
	Score  int32
	Length float64
	Reason string
}

func main() {
	inDir := flag.String("in-dir", "data/traces", "Directory of trace parquet files (searched recursively)")
	top := flag.Int("top", 0, "If > 0, only print the N highest scoring games")
	engine := flag.String("engine", "parquet", "Reader: parquet (load rows in process) or duckdb (aggregate in SQL)")
	logFormat := flag.String("log-format", "text", "Log format: pretty, json or text")
	flag.Parse()

	logger, err := logging.New(os.Stderr, *logFormat, "info")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var rows []store.TickRow
	switch *engine {
	case "parquet":
		paths, err := traceFiles(*inDir)
		if err != nil {
			logger.Error("list traces", "dir", *inDir, "err", err)
			os.Exit(1)
		}
		for _, p := range paths {
			r, err := store.ReadTickRows(p)
			if err != nil {
				logger.Error("read trace", "path", p, "err", err)
				continue
			}
			rows = append(rows, r...)
		}
		logger.Info("loaded traces", "files", len(paths), "rows", len(rows))
	case "duckdb":
		db, err := openTraces(*inDir)
		if err != nil {
			logger.Error("open duckdb", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		rows, err = queryLastTicks(context.Background(), db, *top)
		if err != nil {
			logger.Error("query traces", "err", err)
			os.Exit(1)
		}
	default:
		logger.Error("unknown engine", "engine", *engine)
		os.Exit(2)
	}

	games, err := summarize(rows)
	if err != nil {
		logger.Error("summarize", "err", err)
		os.Exit(1)
	}
	sort.Slice(games, func(i, j int) bool {
		if games[i].Score != games[j].Score {
			return games[i].Score > games[j].Score
		}
		return games[i].GameID < games[j].GameID
	})
	if *top > 0 && len(games) > *top {
		games = games[:*top]
	}
	printSummaries(os.Stdout, games)
	logger.Info("done", "games", len(games))
}

// traceFiles lists finished parquet files under root, skipping tmp dirs.
func traceFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "tmp" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".parquet") {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

// summarize keeps the last tick of every game.
func summarize(rows []store.TickRow) ([]gameSummary, error) {
	last := make(map[string]store.TickRow)
	for _, r := range rows {
		if prev, ok := last[r.GameID]; !ok || r.Tick > prev.Tick {
			last[r.GameID] = r
		}
	}

	out := make([]gameSummary, 0, len(last))
	for id, r := range last {
		snake, err := r.Snake()
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", id, err)
		}
		length := 0.0
		for _, s := range rules.Segments(snake) {
			length += s.Length()
		}
		reason := "open"
		if r.Over {
			reason = selfplay.EndReason(&game.GameState{Width: r.Width, Height: r.Height, Snake: snake})
		}
		out = append(out, gameSummary{
			GameID: id,
			Source: r.Source,
			Ticks:  r.Tick,
			Score:  r.Score,
			Length: length,
			Reason: reason,
		})
	}
	return out, nil
}

func printSummaries(w io.Writer, games []gameSummary) {
	fmt.Fprintf(w, "%-40s %-9s %8s %6s %8s %s\n", "game_id", "source", "ticks", "score", "length", "end")
	fmt.Fprintln(w, strings.Repeat("-", 84))
	for _, g := range games {
		fmt.Fprintf(w, "%-40s %-9s %8d %6d %8.2f %s\n", g.GameID, g.Source, g.Ticks, g.Score, g.Length, g.Reason)
	}
}
