package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/llighterr/promo-task/internal/cohort"
	"github.com/llighterr/promo-task/internal/models"
)

// CohortRepo answers the one membership question this service has:
// users who published exactly one ad inside the window, newest users
// first. Callers only ever hand it a Range that already parsed; the
// empty-cohort branch for blank/bad dates lives with the caller.
type CohortRepo struct {
	pool *pgxpool.Pool
}

func NewCohortRepo(pool *pgxpool.Pool) *CohortRepo {
	return &CohortRepo{pool: pool}
}

// cohortFrom is shared by every cohort query. HAVING COUNT = 1 is the
// strict-one-ad rule: a user with two published ads in the window is
// out, not merely deduplicated. The id tiebreak keeps pagination
// deterministic for users created in the same instant.
const cohortFrom = `
	FROM users u
	JOIN ads a ON a.user_id = u.id
	WHERE a.status = $1
	  AND a.published_at >= $2
	  AND a.published_at < $3
	GROUP BY u.id, u.phone, u.name, u.created_at
	HAVING COUNT(a.id) = 1
`

const cohortOrder = ` ORDER BY u.created_at DESC, u.id DESC`

func (r *CohortRepo) Page(ctx context.Context, rng cohort.Range, limit, offset int) ([]models.CohortUser, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return r.page(ctx, rng, limit, offset)
}

func (r *CohortRepo) Count(ctx context.Context, rng cohort.Range) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM (SELECT u.id`+cohortFrom+`) c`,
		models.AdStatusPublished, rng.From, rng.Until).Scan(&n)
	return n, err
}

// Phones resolves the recipient list for a send, in cohort order.
func (r *CohortRepo) Phones(ctx context.Context, rng cohort.Range) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.phone`+cohortFrom+cohortOrder,
		models.AdStatusPublished, rng.From, rng.Until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phones []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		phones = append(phones, p)
	}
	return phones, rows.Err()
}

// ForEach walks the whole cohort in batches of batchSize, calling fn
// per user. The CSV export rides on this so a large cohort is never
// held in memory at once. Iteration stops on the first fn error.
func (r *CohortRepo) ForEach(ctx context.Context, rng cohort.Range, batchSize int, fn func(models.CohortUser) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}

	for offset := 0; ; offset += batchSize {
		batch, err := r.page(ctx, rng, batchSize, offset)
		if err != nil {
			return err
		}
		for _, u := range batch {
			if err := fn(u); err != nil {
				return err
			}
		}
		if len(batch) < batchSize {
			return nil
		}
	}
}

func scanCohortUsers(rows pgx.Rows) ([]models.CohortUser, error) {
	var users []models.CohortUser
	for rows.Next() {
		var u models.CohortUser
		if err := rows.Scan(&u.ID, &u.Phone, &u.Name, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// page is Page without the preview clamp; export batches may be larger.
func (r *CohortRepo) page(ctx context.Context, rng cohort.Range, limit, offset int) ([]models.CohortUser, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.phone, u.name, u.created_at`+cohortFrom+cohortOrder+` LIMIT $4 OFFSET $5`,
		models.AdStatusPublished, rng.From, rng.Until, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCohortUsers(rows)
}
