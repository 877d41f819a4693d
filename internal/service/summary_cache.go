package service

import (
	"context"
	"fmt"
	"time"

	"store-rating/internal/core/cache"
)

const summaryGenKey = "summary:gen"

// SummaryBackend is implemented by *cache.Cache.
type SummaryBackend interface {
	cache.ByteLoader
	Generation(ctx context.Context, key string) (int64, error)
	Bump(ctx context.Context, key string) (int64, error)
}

// SummaryCache keys the admin summary by a generation counter that every write made through
// this service bumps, plus the highest user id. Users may also be created by the external
// signup flow, which never bumps the generation; their new id still changes the key.
type SummaryCache struct {
	c   SummaryBackend
	ttl time.Duration
}

func NewSummaryCache(c SummaryBackend, ttl time.Duration) *SummaryCache {
	return &SummaryCache{c: c, ttl: ttl}
}

// Get returns the summary cached for the current generation and user watermark.
func (s *SummaryCache) Get(ctx context.Context, userMark uint, load func(context.Context) (*Summary, error)) (*Summary, error) {
	gen, err := s.c.Generation(ctx, summaryGenKey)
	if err != nil {
		return load(ctx)
	}
	return cache.GetOrLoadJSON(s.c, ctx, summaryKey(gen, userMark), s.ttl, load)
}

func (s *SummaryCache) Invalidate(ctx context.Context) error {
	_, err := s.c.Bump(ctx, summaryGenKey)
	return err
}

func summaryKey(gen int64, userMark uint) string {
	return fmt.Sprintf("summary:%d:%d", gen, userMark)
}
