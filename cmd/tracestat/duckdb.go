package main

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/brensch/snekline/store"
)

// openTraces exposes every trace file under root as the view `ticks`.
// Files still being written under tmp/ are skipped.
func openTraces(root string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	_, _ = db.Exec("PRAGMA threads=4")

	glob := filepath.Join(root, "**", "*.parquet")
	sqlText := `CREATE OR REPLACE VIEW ticks AS
		SELECT * FROM read_parquet(['` + escapeSQLString(glob) + `'], filename=true, union_by_name=true)
		WHERE NOT contains(filename, '/tmp/')`
	if _, err := db.Exec(sqlText); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create ticks view: %w", err)
	}
	return db, nil
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// queryLastTicks returns the final row of each game, highest score first.
func queryLastTicks(ctx context.Context, db *sql.DB, limit int) ([]store.TickRow, error) {
	q := `SELECT
			game_id,
			arg_max(source, tick),
			max(tick),
			arg_max(width, tick),
			arg_max(height, tick),
			arg_max(score, tick),
			arg_max(over, tick),
			arg_max(snake_x, tick),
			arg_max(snake_y, tick)
		FROM ticks
		GROUP BY game_id
		ORDER BY 6 DESC, game_id`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var out []store.TickRow
	for rows.Next() {
		var (
			r      store.TickRow
			xs, ys []any
		)
		if err := rows.Scan(&r.GameID, &r.Source, &r.Tick, &r.Width, &r.Height, &r.Score, &r.Over, &xs, &ys); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		if r.SnakeX, err = floats(xs); err != nil {
			return nil, fmt.Errorf("game %s snake_x: %w", r.GameID, err)
		}
		if r.SnakeY, err = floats(ys); err != nil {
			return nil, fmt.Errorf("game %s snake_y: %w", r.GameID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func floats(list []any) ([]float64, error) {
	out := make([]float64, len(list))
	for i, v := range list {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("element %d is %T", i, v)
		}
		out[i] = f
	}
	return out, nil
}
