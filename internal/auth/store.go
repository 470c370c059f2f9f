package auth

import (
	"context"
	"errors"
	"time"

	"fintra/internal/apperr"
	"fintra/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentityStore persists users and their credential material.
type IdentityStore interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

type GormIdentityStore struct {
	DB      *gorm.DB
	Timeout time.Duration
}

func NewIdentityStore(gdb *gorm.DB, timeout time.Duration) *GormIdentityStore {
	return &GormIdentityStore{DB: gdb, Timeout: timeout}
}

// Create inserts u unless the email is taken. The existence check and the
// insert are one statement, so concurrent registrations cannot both win.
func (s *GormIdentityStore) Create(ctx context.Context, u *User) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(u)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.ErrConflict, "email already used")
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Wrap(apperr.ErrConflict, "email already used", err)
	}
	return db.Classify(err)
}

func (s *GormIdentityStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var u User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "user not found")
		}
		return nil, db.Classify(err)
	}
	return &u, nil
}

func (s *GormIdentityStore) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res := s.DB.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return db.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "user not found")
	}
	return nil
}

func (s *GormIdentityStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}
