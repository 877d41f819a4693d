package repo

import (
	"context"

	"gorm.io/gorm"

	"store-rating/internal/domain"
	"store-rating/internal/query"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if IsDuplicateKey(err) {
		return domain.Validation("email already exists")
	}
	return err
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, spec query.FilterSpec) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Scopes(spec.Scope()).
		Find(&users).Error
	return users, err
}

// Delete removes the user, their ratings, the stores they own and the ratings of those stores.
func (r *UserRepo) Delete(ctx context.Context, id uint) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned []uint
		if err := tx.Model(&domain.Store{}).Where("owner_id = ?", id).Pluck("id", &owned).Error; err != nil {
			return err
		}
		ratings := tx.Where("user_id = ?", id)
		if len(owned) > 0 {
			ratings = tx.Where("user_id = ? OR store_id IN ?", id, owned)
		}
		if err := ratings.Delete(&domain.Rating{}).Error; err != nil {
			return err
		}
		if len(owned) > 0 {
			if err := tx.Where("id IN ?", owned).Delete(&domain.Store{}).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&domain.User{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

func (r *UserRepo) MaxID(ctx context.Context) (uint, error) {
	var n uint
	err := r.db.WithContext(ctx).Model(&domain.User{}).Select("COALESCE(MAX(id), 0)").Scan(&n).Error
	return n, err
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, err
}
