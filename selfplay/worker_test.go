package selfplay

import (
	"context"
	"strings"
	"testing"

	"github.com/brensch/snekline/game"
	"github.com/brensch/snekline/rules"
)

func TestPlaySession_RecordsEveryTick(t *testing.T) {
	out, err := PlaySession(context.Background(), 1, rules.DefaultSettings, Options{Seed: 42, MaxTicks: 400})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !out.Completed || out.Checkpoint != nil {
		t.Fatalf("outcome=%+v", out.Result)
	}
	if int64(len(out.Rows)) != out.Result.Ticks {
		t.Fatalf("rows=%d ticks=%d", len(out.Rows), out.Result.Ticks)
	}
	for i, r := range out.Rows {
		if r.Tick != int64(i+1) {
			t.Fatalf("row %d has tick %d", i, r.Tick)
		}
		if r.GameID != out.Result.GameID || r.Source != "selfplay" {
			t.Fatalf("row %d: game=%q source=%q", i, r.GameID, r.Source)
		}
		if len(r.SnakeX) < 2 || len(r.SnakeX) != len(r.SnakeY) {
			t.Fatalf("row %d: snake coords %d/%d", i, len(r.SnakeX), len(r.SnakeY))
		}
	}

	last := out.Rows[len(out.Rows)-1]
	switch out.Result.Reason {
	case ReasonTickCap:
		if out.Result.Ticks != 400 || last.Over {
			t.Fatalf("tick cap: ticks=%d over=%v", out.Result.Ticks, last.Over)
		}
	case ReasonWall, ReasonSelf:
		if !last.Over {
			t.Fatalf("reason %s but last row not over", out.Result.Reason)
		}
	default:
		t.Fatalf("unexpected reason %q", out.Result.Reason)
	}

	want := float64(rules.DefaultSettings.InitialLength) + float64(out.Result.Score)
	if diff := out.Result.Length - want; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("length=%.6f want %.6f", out.Result.Length, want)
	}
}

func TestPlaySession_CancelCheckpointsAndResumes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ticks := 0
	opts := Options{Seed: 3, MaxTicks: 50, OnTick: func() {
		ticks++
		if ticks == 10 {
			cancel()
		}
	}}

	out, err := PlaySession(ctx, 0, rules.DefaultSettings, opts)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if out.Completed || out.Checkpoint == nil {
		t.Fatalf("expected checkpoint, got completed=%v", out.Completed)
	}
	if out.Result.Reason != ReasonStopped || len(out.Checkpoint.Rows) != 10 || out.Checkpoint.State.Ticks != 10 {
		t.Fatalf("checkpoint reason=%s rows=%d ticks=%d", out.Result.Reason, len(out.Checkpoint.Rows), out.Checkpoint.State.Ticks)
	}

	resumed, err := PlaySession(context.Background(), 0, rules.DefaultSettings, Options{MaxTicks: 50, Resume: out.Checkpoint})
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Result.GameID != out.Checkpoint.GameID {
		t.Fatalf("resumed game id=%q want %q", resumed.Result.GameID, out.Checkpoint.GameID)
	}
	if int64(len(resumed.Rows)) != resumed.Result.Ticks || resumed.Rows[10].Tick != 11 {
		t.Fatalf("resumed rows=%d ticks=%d", len(resumed.Rows), resumed.Result.Ticks)
	}
}

func TestBoard_Opening(t *testing.T) {
	state, err := rules.NewState(rules.DefaultSettings, nil)
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	lines := strings.Split(strings.TrimRight(Board(state), "\n"), "\n")
	if len(lines) != 1+int(state.Height) {
		t.Fatalf("board has %d lines:\n%s", len(lines), Board(state))
	}
	row := lines[1+7]
	if !strings.Contains(row, "o o o O") {
		t.Fatalf("row 7=%q", row)
	}
	if strings.Count(Board(state), "F") != 1 {
		t.Fatalf("want one food:\n%s", Board(state))
	}
}

func TestEndReason(t *testing.T) {
	wall := &game.GameState{Width: 17, Height: 15, Snake: game.Snake{{X: 14.5, Y: 7.5}, {X: 17.1, Y: 7.5}}}
	if got := EndReason(wall); got != ReasonWall {
		t.Fatalf("wall reason=%s", got)
	}
	self := &game.GameState{Width: 17, Height: 15, Snake: game.Snake{{X: 2.5, Y: 2.5}, {X: 4.5, Y: 2.5}}}
	if got := EndReason(self); got != ReasonSelf {
		t.Fatalf("self reason=%s", got)
	}
}
