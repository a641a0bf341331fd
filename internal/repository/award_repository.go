package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/spin-wheel-promo/internal/model"
)

// PoolInterface defines the database operations needed by AwardRepository.
// This allows for easier testing with mocks.
type PoolInterface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// AwardRepository provides data access for the award ledger using pgx.
type AwardRepository struct {
	pool PoolInterface
}

// NewAwardRepository creates a new AwardRepository with the given pool.
func NewAwardRepository(pool *pgxpool.Pool) *AwardRepository {
	return &AwardRepository{pool: pool}
}

// NewAwardRepositoryWithPool creates a new AwardRepository with a custom pool interface.
// This is primarily used for testing.
func NewAwardRepositoryWithPool(pool PoolInterface) *AwardRepository {
	return &AwardRepository{pool: pool}
}

// Insert writes an award and fills in its generated ID and timestamp.
func (r *AwardRepository) Insert(ctx context.Context, award *model.Award) error {
	query := `INSERT INTO awards (session_id, user_name, code, discount_label, rotation_degrees)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		award.SessionID, award.UserName, award.Code, award.DiscountLabel, award.RotationDegrees,
	).Scan(&award.ID, &award.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert award %s: %w", award.Code, err)
	}
	return nil
}

// Recent returns the latest awards, newest first.
// On success, returns an empty slice (not nil) when the ledger is empty.
func (r *AwardRepository) Recent(ctx context.Context, limit int) ([]model.Award, error) {
	query := `SELECT id, session_id, user_name, code, discount_label, rotation_degrees, created_at
		FROM awards ORDER BY created_at DESC, id DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent awards: %w", err)
	}
	defer rows.Close()

	awards := []model.Award{}
	for rows.Next() {
		var a model.Award
		if err := rows.Scan(&a.ID, &a.SessionID, &a.UserName, &a.Code, &a.DiscountLabel, &a.RotationDegrees, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan award: %w", err)
		}
		awards = append(awards, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate award rows: %w", err)
	}
	return awards, nil
}

// CountByCode returns how often each code has been won, most frequent first.
func (r *AwardRepository) CountByCode(ctx context.Context) ([]model.AwardCount, error) {
	query := `SELECT code, COUNT(*) FROM awards GROUP BY code ORDER BY COUNT(*) DESC, code`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query award counts: %w", err)
	}
	defer rows.Close()

	counts := []model.AwardCount{}
	for rows.Next() {
		var c model.AwardCount
		if err := rows.Scan(&c.Code, &c.Count); err != nil {
			return nil, fmt.Errorf("scan award count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate award count rows: %w", err)
	}
	return counts, nil
}

// Ping checks that the database is reachable.
func (r *AwardRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
