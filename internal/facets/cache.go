// Package facets serves the distinct-value enumerations that populate
// the search filter options. Values are recomputed on a schedule and
// kept in Redis so facet reads never hit a full collection scan.
package facets

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"joblink/api/internal/models"
)

const cacheTTL = 2 * time.Hour

// DistinctLister is the slice of the job repository the cache needs.
type DistinctLister interface {
	Distinct(ctx context.Context, field models.FacetField) ([]string, error)
}

// Cache reads facet values through Redis, falling back to live queries.
type Cache struct {
	jobs   DistinctLister
	rdb    *redis.Client
	logger *zap.Logger
	cron   *cron.Cron
}

func NewCache(jobs DistinctLister, rdb *redis.Client, logger *zap.Logger) *Cache {
	return &Cache{jobs: jobs, rdb: rdb, logger: logger}
}

// Start refreshes all facets immediately, then hourly.
func (c *Cache) Start() error {
	c.cron = cron.New()
	if _, err := c.cron.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		c.RefreshAll(ctx)
	}); err != nil {
		return err
	}
	c.cron.Start()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		c.RefreshAll(ctx)
	}()
	return nil
}

func (c *Cache) Stop() {
	if c.cron != nil {
		c.cron.Stop()
	}
}

// RefreshAll recomputes every facet field.
func (c *Cache) RefreshAll(ctx context.Context) {
	for _, field := range []models.FacetField{
		models.FacetTitle, models.FacetLocation,
		models.FacetEmploymentType, models.FacetCompany,
	} {
		if _, err := c.refresh(ctx, field); err != nil {
			c.logger.Warn("facet refresh failed",
				zap.String("field", string(field)), zap.Error(err))
		}
	}
}

// Get returns the cached values for a field, refreshing on a miss.
func (c *Cache) Get(ctx context.Context, field models.FacetField) ([]string, error) {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, key(field)).Result()
		if err == nil {
			var values []string
			if err := json.Unmarshal([]byte(raw), &values); err == nil {
				return values, nil
			}
		}
	}
	return c.refresh(ctx, field)
}

func (c *Cache) refresh(ctx context.Context, field models.FacetField) ([]string, error) {
	values, err := c.jobs.Distinct(ctx, field)
	if err != nil {
		return nil, err
	}
	if c.rdb != nil {
		if raw, err := json.Marshal(values); err == nil {
			_ = c.rdb.Set(ctx, key(field), raw, cacheTTL).Err()
		}
	}
	return values, nil
}

func key(field models.FacetField) string {
	return "facets:" + string(field)
}
