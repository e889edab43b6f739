package repositories

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-network/backend/internal/leaderboard"
)

// SnapshotRepo persists built leaderboards so the worker's refresh
// history survives restarts and a board can still be served when
// every chain read fails.
type SnapshotRepo struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepo(pool *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

func (r *SnapshotRepo) Save(ctx context.Context, board *leaderboard.Board) error {
	raw, err := json.Marshal(board)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO leaderboard_snapshots (filter, board, fetched_at)
		VALUES ($1, $2, $3)
	`, board.Filter, raw, board.FetchedAt)
	return err
}

// Latest returns the most recent snapshot for the filter, or nil when
// none exists yet.
func (r *SnapshotRepo) Latest(ctx context.Context, filter leaderboard.Filter) (*leaderboard.Board, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `
		SELECT board FROM leaderboard_snapshots
		WHERE filter = $1
		ORDER BY fetched_at DESC
		LIMIT 1
	`, filter).Scan(&raw)
	if err != nil {
		return nil, err
	}
	var board leaderboard.Board
	if err := json.Unmarshal(raw, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// Prune drops all but the newest n snapshots per filter.
func (r *SnapshotRepo) Prune(ctx context.Context, keep int) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM leaderboard_snapshots
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, row_number() OVER (PARTITION BY filter ORDER BY fetched_at DESC) AS rn
				FROM leaderboard_snapshots
			) ranked
			WHERE rn <= $1
		)
	`, keep)
	return err
}
