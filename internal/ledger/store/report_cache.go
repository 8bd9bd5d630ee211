package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"hemicycle/internal/ledger/report"
	platformredis "hemicycle/internal/platform/redis"
	dErrors "hemicycle/pkg/domain-errors"
)

// ReportCache retains completed run reports for later retrieval by run id.
type ReportCache interface {
	Put(ctx context.Context, r *report.Report) error
	Get(ctx context.Context, runID string) (*report.Report, error)
}

// RedisReportCache stores reports as JSON with a TTL.
type RedisReportCache struct {
	client *platformredis.Client
	ttl    time.Duration
}

func NewRedisReportCache(client *platformredis.Client, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{client: client, ttl: ttl}
}

func reportKey(runID string) string {
	return fmt.Sprintf("hemicycle:report:%s", runID)
}

func (c *RedisReportCache) Put(ctx context.Context, r *report.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marshal report")
	}
	if err := c.client.Set(ctx, reportKey(r.RunID), payload, c.ttl).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "cache report")
	}
	return nil
}

func (c *RedisReportCache) Get(ctx context.Context, runID string) (*report.Report, error) {
	payload, err := c.client.Get(ctx, reportKey(runID)).Bytes()
	if err == goredis.Nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "report not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "fetch report")
	}
	var r report.Report
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "unmarshal report")
	}
	return &r, nil
}

// MemoryReportCache is the in-process fallback used when Redis is not
// configured, and in tests.
type MemoryReportCache struct {
	mu      sync.RWMutex
	reports map[string]*report.Report
}

func NewMemoryReportCache() *MemoryReportCache {
	return &MemoryReportCache{reports: make(map[string]*report.Report)}
}

func (c *MemoryReportCache) Put(_ context.Context, r *report.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[r.RunID] = r
	return nil
}

func (c *MemoryReportCache) Get(_ context.Context, runID string) (*report.Report, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if r, ok := c.reports[runID]; ok {
		return r, nil
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "report not found")
}
