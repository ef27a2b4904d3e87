package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// countByStatus runs "SELECT status, count(*) ... GROUP BY status" over table. The table
// name is always a package constant.
func countByStatus[S ~string](ctx context.Context, tx pgx.Tx, table string, parse func(string) (S, error)) (map[S]int, error) {
	rows, err := tx.Query(ctx, `SELECT status, count(*) FROM `+table+` GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count %s by status: %w", table, err)
	}
	defer rows.Close()

	out := make(map[S]int)
	for rows.Next() {
		var (
			raw string
			n   int
		)
		if err := rows.Scan(&raw, &n); err != nil {
			return nil, fmt.Errorf("scan %s count: %w", table, err)
		}
		status, err := parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", table, err)
		}
		out[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
