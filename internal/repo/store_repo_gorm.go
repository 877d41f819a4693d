package repo

import (
	"context"

	"gorm.io/gorm"

	"store-rating/internal/domain"
	"store-rating/internal/query"
)

type StoreRepo struct{ db *gorm.DB }

func NewStoreRepo(db *gorm.DB) *StoreRepo { return &StoreRepo{db: db} }

var _ domain.StoreRepository = (*StoreRepo)(nil)

func (r *StoreRepo) Create(ctx context.Context, s *domain.Store) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *StoreRepo) FindByID(ctx context.Context, id uint) (*domain.Store, error) {
	var s domain.Store
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepo) FindOwned(ctx context.Context, id, ownerID uint) (*domain.Store, error) {
	var s domain.Store
	err := r.db.WithContext(ctx).First(&s, "id = ? AND owner_id = ?", id, ownerID).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepo) List(ctx context.Context, scope domain.StoreScope, spec query.FilterSpec) ([]domain.Store, error) {
	q := r.db.WithContext(ctx).Model(&domain.Store{})
	switch {
	case scope.OwnerID != nil:
		q = q.Where("owner_id = ?", *scope.OwnerID)
	case scope.OwnedOnly:
		q = q.Where("owner_id IS NOT NULL")
	}
	var stores []domain.Store
	err := q.Scopes(spec.Scope()).Find(&stores).Error
	return stores, err
}

func (r *StoreRepo) Update(ctx context.Context, s *domain.Store) error {
	return r.db.WithContext(ctx).
		Model(s).
		Select("name", "address", "email").
		Updates(s).Error
}

// Delete removes the store and its ratings.
func (r *StoreRepo) Delete(ctx context.Context, id uint) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", id).Delete(&domain.Rating{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Store{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

func (r *StoreRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Store{}).Count(&n).Error
	return n, err
}
