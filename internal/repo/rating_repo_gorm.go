package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"store-rating/internal/domain"
)

type RatingRepo struct{ db *gorm.DB }

func NewRatingRepo(db *gorm.DB) *RatingRepo { return &RatingRepo{db: db} }

var _ domain.RatingRepository = (*RatingRepo)(nil)

// Create relies on idx_ratings_user_store for duplicates and on the foreign keys for a rater
// or store deleted since the caller looked it up.
func (r *RatingRepo) Create(ctx context.Context, rt *domain.Rating) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(rt).Error
	switch {
	case IsDuplicateKey(err):
		return domain.DuplicateRating(err)
	case IsForeignKeyViolation(err):
		return &domain.Error{Kind: domain.KindNotFound, Msg: "user or store not found", Err: err}
	}
	return err
}

func (r *RatingRepo) FindByUserAndStore(ctx context.Context, userID, storeID uint) (*domain.Rating, error) {
	var rt domain.Rating
	err := r.db.WithContext(ctx).First(&rt, "user_id = ? AND store_id = ?", userID, storeID).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// ListByStore returns newest first with the rater's name and email.
func (r *RatingRepo) ListByStore(ctx context.Context, storeID uint) ([]domain.RatingWithRater, error) {
	var rows []domain.RatingWithRater
	err := r.db.WithContext(ctx).
		Table("ratings").
		Select(`ratings.id, ratings.user_id, ratings.store_id, ratings.score, ratings.comment, ratings.created_at,
			COALESCE(users.name, '') AS user_name, COALESCE(users.email, '') AS user_email`).
		Joins("LEFT JOIN users ON users.id = ratings.user_id").
		Where("ratings.store_id = ?", storeID).
		Order("ratings.created_at DESC").
		Order("ratings.id DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *RatingRepo) ListByUserAndStores(ctx context.Context, userID uint, storeIDs []uint) ([]domain.Rating, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}
	var out []domain.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id IN ?", userID, storeIDs).
		Find(&out).Error
	return out, err
}

// statsRow sums in SQL and divides in Go, so AVG's per-engine numeric types never reach Scan.
type statsRow struct {
	StoreID     uint
	ScoreSum    int64
	RatingCount int64
}

func (s statsRow) stats() domain.StoreStats {
	out := domain.StoreStats{StoreID: s.StoreID, RatingCount: s.RatingCount}
	if s.RatingCount > 0 {
		out.AvgRating = float64(s.ScoreSum) / float64(s.RatingCount)
	}
	return out
}

func (r *RatingRepo) StatsGrouped(ctx context.Context, storeIDs []uint) ([]domain.StoreStats, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}
	var rows []statsRow
	err := r.db.WithContext(ctx).
		Model(&domain.Rating{}).
		Select("store_id, COALESCE(SUM(score), 0) AS score_sum, COUNT(DISTINCT id) AS rating_count").
		Where("store_id IN ?", storeIDs).
		Group("store_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.StoreStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.stats())
	}
	return out, nil
}

func (r *RatingRepo) StatsForStore(ctx context.Context, storeID uint) (domain.StoreStats, error) {
	var row statsRow
	err := r.db.WithContext(ctx).
		Model(&domain.Rating{}).
		Select("COALESCE(SUM(score), 0) AS score_sum, COUNT(DISTINCT id) AS rating_count").
		Where("store_id = ?", storeID).
		Scan(&row).Error
	if err != nil {
		return domain.StoreStats{}, err
	}
	row.StoreID = storeID
	return row.stats(), nil
}

func (r *RatingRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Rating{}).Count(&n).Error
	return n, err
}
