package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brensch/snekline/store"
)

func row(id string, tick int64, score int32, over bool, xs, ys []float64) store.TickRow {
	return store.TickRow{GameID: id, Tick: tick, Width: 17, Height: 15, Score: score, Over: over, SnakeX: xs, SnakeY: ys, Source: "test"}
}

func TestSummarize_LastTickPerGame(t *testing.T) {
	rows := []store.TickRow{
		row("a", 2, 1, false, []float64{5.5, 9.5}, []float64{7.5, 7.5}),
		row("a", 3, 1, true, []float64{13.6, 17.6}, []float64{7.5, 7.5}),
		row("a", 1, 0, false, []float64{5.5, 8.5}, []float64{7.5, 7.5}),
		row("b", 1, 0, false, []float64{5.5, 8.5}, []float64{7.5, 7.5}),
	}
	games, err := summarize(rows)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	byID := map[string]gameSummary{}
	for _, g := range games {
		byID[g.GameID] = g
	}
	a := byID["a"]
	if a.Ticks != 3 || a.Score != 1 || a.Reason != "wall" || a.Length < 3.999 || a.Length > 4.001 {
		t.Fatalf("a=%+v", a)
	}
	if b := byID["b"]; b.Reason != "open" || b.Ticks != 1 {
		t.Fatalf("b=%+v", b)
	}

	var buf bytes.Buffer
	printSummaries(&buf, games)
	if strings.Count(buf.String(), "\n") != 2+len(games) {
		t.Fatalf("output:\n%s", buf.String())
	}
}

func TestSummarize_BadRow(t *testing.T) {
	_, err := summarize([]store.TickRow{row("a", 1, 0, false, []float64{1, 2}, []float64{1})})
	if err == nil {
		t.Fatalf("expected error for mismatched coordinates")
	}
}

func TestTraceFiles_SkipsTmp(t *testing.T) {
	dir := t.TempDir()
	rows := []store.TickRow{row("a", 1, 0, false, []float64{5.5, 8.5}, []float64{7.5, 7.5})}
	for _, p := range []string{"one.parquet", filepath.Join("nested", "two.parquet"), filepath.Join("tmp", "partial.parquet")} {
		if err := store.WriteTraceParquet(filepath.Join(dir, p), rows); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	paths, err := traceFiles(dir)
	if err != nil {
		t.Fatalf("trace files: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths=%v", paths)
	}
	for _, p := range paths {
		if strings.Contains(p, "tmp") && strings.Contains(p, "partial") {
			t.Fatalf("tmp file listed: %s", p)
		}
	}
}
