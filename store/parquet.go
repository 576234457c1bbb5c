package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/snekline/game"
)

const traceSchema = "snake_tick_v1"

// TickRow is a single (game, tick) snapshot taken after the tick was
// processed.
//
// The polyline is stored as parallel coordinate columns, tail tip first.
// Movement is the request fed on this tick: -1=None, 0=Up, 1=Right, 2=Down,
// 3=Left. Direction uses the same encoding.
type TickRow struct {
	GameID    string  `parquet:"game_id,dict"`
	Tick      int64   `parquet:"tick"`
	ElapsedMs float64 `parquet:"elapsed_ms"`
	Width     int32   `parquet:"width"`
	Height    int32   `parquet:"height"`
	Speed     float64 `parquet:"speed"`

	Movement  int32 `parquet:"movement"`
	Direction int32 `parquet:"direction"`

	SnakeX []float64 `parquet:"snake_x"`
	SnakeY []float64 `parquet:"snake_y"`

	FoodX float64 `parquet:"food_x"`
	FoodY float64 `parquet:"food_y"`

	Score int32 `parquet:"score"`
	Over  bool  `parquet:"over"`

	Source string `parquet:"source,dict"`
}

// RowFromState snapshots state into a TickRow.
func RowFromState(gameID, source string, elapsedMs float64, movement game.Direction, state *game.GameState) TickRow {
	xs := make([]float64, len(state.Snake))
	ys := make([]float64, len(state.Snake))
	for i, p := range state.Snake {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return TickRow{
		GameID:    gameID,
		Tick:      state.Ticks,
		ElapsedMs: elapsedMs,
		Width:     state.Width,
		Height:    state.Height,
		Speed:     state.Speed,
		Movement:  int32(movement),
		Direction: int32(state.Direction),
		SnakeX:    xs,
		SnakeY:    ys,
		FoodX:     state.Food.X,
		FoodY:     state.Food.Y,
		Score:     state.Score,
		Over:      state.Over,
		Source:    source,
	}
}

// Snake rebuilds the polyline stored in the row.
func (r TickRow) Snake() (game.Snake, error) {
	if len(r.SnakeX) != len(r.SnakeY) {
		return nil, fmt.Errorf("tick %d: %d x coords vs %d y coords", r.Tick, len(r.SnakeX), len(r.SnakeY))
	}
	out := make(game.Snake, len(r.SnakeX))
	for i := range r.SnakeX {
		out[i] = game.Vector{X: r.SnakeX[i], Y: r.SnakeY[i]}
	}
	return out, nil
}

// WriteTraceParquet writes rows to outPath through a temp file and rename.
func WriteTraceParquet(outPath string, rows []TickRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", traceSchema),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// ReadTickRows loads every row of a trace file.
func ReadTickRows(path string) ([]TickRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}

	reader := parquet.NewGenericReader[TickRow](pf)
	defer reader.Close()

	rows := make([]TickRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return rows[:n], nil
}
