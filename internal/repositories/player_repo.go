package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-network/backend/internal/chain"
	"github.com/pulse-network/backend/internal/models"
)

type PlayerRepo struct {
	pool *pgxpool.Pool
}

func NewPlayerRepo(pool *pgxpool.Pool) *PlayerRepo {
	return &PlayerRepo{pool: pool}
}

// UpsertByAddress records a wallet the service has seen, refreshing
// last_seen_at on every visit.
func (r *PlayerRepo) UpsertByAddress(ctx context.Context, address string, family chain.Family, network chain.Network) (*models.Player, error) {
	var p models.Player
	err := r.pool.QueryRow(ctx, `
		INSERT INTO players (address, family, network)
		VALUES ($1, $2, $3)
		ON CONFLICT (address) DO UPDATE SET
			last_seen_at = now()
		RETURNING id, address, family, network, display_name, first_seen_at, last_seen_at
	`, address, family, network).Scan(
		&p.ID, &p.Address, &p.Family, &p.Network, &p.DisplayName, &p.FirstSeenAt, &p.LastSeenAt,
	)
	return &p, err
}

func (r *PlayerRepo) GetByAddress(ctx context.Context, address string) (*models.Player, error) {
	var p models.Player
	err := r.pool.QueryRow(ctx, `
		SELECT id, address, family, network, display_name, first_seen_at, last_seen_at
		FROM players WHERE address = $1
	`, address).Scan(&p.ID, &p.Address, &p.Family, &p.Network, &p.DisplayName, &p.FirstSeenAt, &p.LastSeenAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlayerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	var p models.Player
	err := r.pool.QueryRow(ctx, `
		SELECT id, address, family, network, display_name, first_seen_at, last_seen_at
		FROM players WHERE id = $1
	`, id).Scan(&p.ID, &p.Address, &p.Family, &p.Network, &p.DisplayName, &p.FirstSeenAt, &p.LastSeenAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlayerRepo) SetDisplayName(ctx context.Context, address, name string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE players SET display_name = $2 WHERE address = $1
	`, address, name)
	return err
}
