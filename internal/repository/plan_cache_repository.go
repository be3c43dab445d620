package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

// DefaultPlanKey is the Redis key of the current plan.
const DefaultPlanKey = "seating:plan:current"

type jsonCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisPlanRepository keeps the latest seating plan under a single key with
// no expiry.
type RedisPlanRepository struct {
	cache jsonCache
	key   string
}

// NewRedisPlanRepository constructs the repository.
func NewRedisPlanRepository(cache jsonCache, key string) *RedisPlanRepository {
	if key == "" {
		key = DefaultPlanKey
	}
	return &RedisPlanRepository{cache: cache, key: key}
}

// Save replaces the current plan.
func (r *RedisPlanRepository) Save(ctx context.Context, plan *models.SeatingPlan) error {
	if plan == nil {
		return fmt.Errorf("save seating plan: plan is nil")
	}
	return r.cache.Set(ctx, r.key, plan, 0)
}

// Load returns the current plan or ErrPlanNotFound.
func (r *RedisPlanRepository) Load(ctx context.Context) (*models.SeatingPlan, error) {
	var plan models.SeatingPlan
	if err := r.cache.Get(ctx, r.key, &plan); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// Clear removes the current plan.
func (r *RedisPlanRepository) Clear(ctx context.Context) error {
	return r.cache.Delete(ctx, r.key)
}
