package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/llighterr/promo-task/internal/models"
)

type PromoMessageRepo struct {
	pool *pgxpool.Pool
}

func NewPromoMessageRepo(pool *pgxpool.Pool) *PromoMessageRepo {
	return &PromoMessageRepo{pool: pool}
}

func (r *PromoMessageRepo) Create(ctx context.Context, m *models.PromoMessage) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO promo_messages (body, date_from, date_to)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, m.Body, m.DateFrom, m.DateTo).Scan(&m.ID, &m.CreatedAt)
}

// Latest returns the most recently created promo message. The delivery
// worker uses it to resolve the body for a send task, since tasks carry
// only the recipient phone.
func (r *PromoMessageRepo) Latest(ctx context.Context) (*models.PromoMessage, error) {
	var m models.PromoMessage
	err := r.pool.QueryRow(ctx, `
		SELECT id, body, date_from, date_to, created_at
		FROM promo_messages
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`).Scan(&m.ID, &m.Body, &m.DateFrom, &m.DateTo, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
