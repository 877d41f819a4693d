// Package service holds the role-scoped store rating operations. Every exported operation takes
// the authenticated caller as a domain.ActorContext and returns *domain.Error kinds for expected failures.
package service

import (
	"go.uber.org/zap"

	"store-rating/internal/domain"
)

type Options struct {
	Users   domain.UserRepository
	Stores  domain.StoreRepository
	Ratings domain.RatingRepository

	Strategy Strategy
	// Publisher receives domain events; nil disables publishing.
	Publisher Publisher
	// SummaryCache is optional; nil computes the admin summary on every call.
	SummaryCache *SummaryCache
	Log          *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Log == nil {
		return zap.NewNop()
	}
	return o.Log
}

func (o Options) notifier() *notifier {
	pub := o.Publisher
	if pub == nil {
		pub = NopPublisher{}
	}
	return &notifier{pub: pub, cache: o.SummaryCache, log: o.logger()}
}
