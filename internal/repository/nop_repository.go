package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/spin-wheel-promo/internal/model"
)

// NopAwardRepository stands in for the ledger when no database is configured.
// Inserts succeed and are numbered; queries return nothing.
type NopAwardRepository struct {
	seq atomic.Int64
}

// NewNopAwardRepository creates a ledger that keeps nothing.
func NewNopAwardRepository() *NopAwardRepository {
	return &NopAwardRepository{}
}

func (r *NopAwardRepository) Insert(_ context.Context, award *model.Award) error {
	award.ID = r.seq.Add(1)
	award.CreatedAt = time.Now().UTC()
	return nil
}

func (r *NopAwardRepository) Recent(context.Context, int) ([]model.Award, error) {
	return []model.Award{}, nil
}

func (r *NopAwardRepository) CountByCode(context.Context) ([]model.AwardCount, error) {
	return []model.AwardCount{}, nil
}

func (r *NopAwardRepository) Ping(context.Context) error {
	return nil
}
