package service

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"store-rating/internal/domain"
)

type Strategy string

const (
	// StrategyGrouped computes every requested store in one GROUP BY query.
	StrategyGrouped Strategy = "grouped"
	// StrategyPerStore issues one aggregate query per store.
	StrategyPerStore Strategy = "per_store"
)

// ParseStrategy defaults to grouped for anything it does not recognise.
func ParseStrategy(s string) Strategy {
	if Strategy(strings.ToLower(strings.TrimSpace(s))) == StrategyPerStore {
		return StrategyPerStore
	}
	return StrategyGrouped
}

const perStoreParallelism = 4

type Aggregator struct {
	ratings  domain.RatingRepository
	strategy Strategy
}

func NewAggregator(ratings domain.RatingRepository, strategy Strategy) *Aggregator {
	return &Aggregator{ratings: ratings, strategy: strategy}
}

// Aggregate returns an entry for every requested store; stores without ratings get the zero aggregate.
func (a *Aggregator) Aggregate(ctx context.Context, storeIDs ...uint) (map[uint]domain.StoreAggregate, error) {
	ids := uniqueIDs(storeIDs)
	out := make(map[uint]domain.StoreAggregate, len(ids))
	for _, id := range ids {
		out[id] = domain.StoreAggregate{}
	}
	if len(ids) == 0 {
		return out, nil
	}

	var stats []domain.StoreStats
	var err error
	if a.strategy == StrategyPerStore {
		stats, err = a.perStore(ctx, ids)
	} else {
		stats, err = a.ratings.StatsGrouped(ctx, ids)
	}
	if err != nil {
		return nil, domain.Internal("aggregate ratings", err)
	}
	for _, s := range stats {
		if _, ok := out[s.StoreID]; ok {
			out[s.StoreID] = toAggregate(s)
		}
	}
	return out, nil
}

func (a *Aggregator) perStore(ctx context.Context, ids []uint) ([]domain.StoreStats, error) {
	var mu sync.Mutex
	stats := make([]domain.StoreStats, 0, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(perStoreParallelism)
	for _, id := range ids {
		g.Go(func() error {
			s, err := a.ratings.StatsForStore(ctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			stats = append(stats, s)
			mu.Unlock()
			return nil
		})
	}
	return stats, g.Wait()
}

// MyRatings maps each requested store to the user's score, nil where the user has not rated it.
func (a *Aggregator) MyRatings(ctx context.Context, userID uint, storeIDs []uint) (map[uint]*int, error) {
	ids := uniqueIDs(storeIDs)
	out := make(map[uint]*int, len(ids))
	for _, id := range ids {
		out[id] = nil
	}
	if len(ids) == 0 {
		return out, nil
	}
	mine, err := a.ratings.ListByUserAndStores(ctx, userID, ids)
	if err != nil {
		return nil, domain.Internal("load user ratings", err)
	}
	for _, r := range mine {
		if _, ok := out[r.StoreID]; ok {
			score := r.Score
			out[r.StoreID] = &score
		}
	}
	return out, nil
}

// Fold computes aggregates from already loaded ratings.
func Fold(ratings []domain.Rating) map[uint]domain.StoreAggregate {
	type acc struct {
		sum   int64
		count int64
		seen  map[uint]struct{}
	}
	accs := map[uint]*acc{}
	for _, r := range ratings {
		x, ok := accs[r.StoreID]
		if !ok {
			x = &acc{seen: map[uint]struct{}{}}
			accs[r.StoreID] = x
		}
		if _, dup := x.seen[r.ID]; dup {
			continue
		}
		x.seen[r.ID] = struct{}{}
		x.sum += int64(r.Score)
		x.count++
	}
	out := make(map[uint]domain.StoreAggregate, len(accs))
	for id, x := range accs {
		out[id] = toAggregate(domain.StoreStats{
			StoreID:     id,
			AvgRating:   float64(x.sum) / float64(x.count),
			RatingCount: x.count,
		})
	}
	return out
}

func toAggregate(s domain.StoreStats) domain.StoreAggregate {
	if s.RatingCount == 0 {
		return domain.StoreAggregate{}
	}
	return domain.StoreAggregate{AvgRating: s.AvgRating, RatingCount: int(s.RatingCount)}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
