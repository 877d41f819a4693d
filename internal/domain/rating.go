package domain

import (
	"context"
	"time"
)

const (
	MinScore = 1
	MaxScore = 5
)

// Rating is write-once: there is no update or delete path. Both references are foreign keys
// with ON DELETE CASCADE, so a rating never outlives its rater or its store.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ratings_user_store,priority:1" json:"userId"`
	StoreID   uint      `gorm:"not null;index;uniqueIndex:idx_ratings_user_store,priority:2" json:"storeId"`
	Score     int       `gorm:"not null;check:chk_ratings_score,score >= 1 AND score <= 5" json:"score"`
	Comment   string    `gorm:"size:500" json:"comment"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	User  *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Store *Store `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Rating) TableName() string { return "ratings" }

// RatingWithRater is a rating joined with the rater's public identity.
type RatingWithRater struct {
	ID        uint
	UserID    uint
	StoreID   uint
	Score     int
	Comment   string
	CreatedAt time.Time
	UserName  string
	UserEmail string
}

// StoreStats is one aggregate row as produced by storage.
type StoreStats struct {
	StoreID     uint
	AvgRating   float64
	RatingCount int64
}

// StoreAggregate is the derived per-store statistic. Zero value means "no ratings".
type StoreAggregate struct {
	AvgRating   float64 `json:"avgRating"`
	RatingCount int     `json:"ratingCount"`
}

type RatingRepository interface {
	// Create inserts the rating. A (user, store) collision yields ErrDuplicateRating; a missing
	// user or store yields ErrNotFound.
	Create(ctx context.Context, r *Rating) error
	FindByUserAndStore(ctx context.Context, userID, storeID uint) (*Rating, error)
	ListByStore(ctx context.Context, storeID uint) ([]RatingWithRater, error)
	ListByUserAndStores(ctx context.Context, userID uint, storeIDs []uint) ([]Rating, error)
	StatsGrouped(ctx context.Context, storeIDs []uint) ([]StoreStats, error)
	StatsForStore(ctx context.Context, storeID uint) (StoreStats, error)
	Count(ctx context.Context) (int64, error)
}
