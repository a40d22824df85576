package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matchmaking/internal/db"
)

// UserRepository reads the user directory.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// DisplayNames resolves usernames for the given ids. Unknown ids are absent
// from the result.
func (r *UserRepository) DisplayNames(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	out := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []db.User
	if err := r.db.WithContext(ctx).Select("id", "username").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u.Username
	}
	return out, nil
}

// Exists reports whether an active user with id is present.
func (r *UserRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ? AND active = ?", id, true).Count(&n).Error
	return n > 0, err
}
