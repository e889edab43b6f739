package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-network/backend/internal/leaderboard"
)

// AddressRepo stores the leaderboard candidate addresses collected
// from connections and explorer discovery. It satisfies
// leaderboard.AddressSource.
type AddressRepo struct {
	pool *pgxpool.Pool
}

func NewAddressRepo(pool *pgxpool.Pool) *AddressRepo {
	return &AddressRepo{pool: pool}
}

func (r *AddressRepo) Register(ctx context.Context, address string, filter leaderboard.Filter, source string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO registered_addresses (address, filter, source)
		VALUES ($1, $2, $3)
		ON CONFLICT (address, filter) DO NOTHING
	`, address, filter, source)
	return err
}

func (r *AddressRepo) Addresses(ctx context.Context, filter leaderboard.Filter) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT address FROM registered_addresses
		WHERE filter = $1
		ORDER BY created_at
	`, filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var address string
		if err := rows.Scan(&address); err != nil {
			return nil, err
		}
		out = append(out, address)
	}
	return out, rows.Err()
}
