package service

import (
	"bitwise74/secure-file-ops/internal/model"
	"bitwise74/secure-file-ops/pkg/util"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const userIDSize = 16

// Directory resolves and creates users. Emails are stored and compared as given
type Directory struct {
	DB *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{DB: db}
}

func (d *Directory) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := d.DB.WithContext(ctx).
		Where("email = ?", email).
		First(&u).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	return &u, nil
}

// Create inserts a new unverified user. The existence check only saves a
// round trip for the common case, the unique index on email is what actually
// guarantees two concurrent signups can't both succeed
func (d *Directory) Create(ctx context.Context, email, passwordHash, role string) (*model.User, error) {
	var n int64

	err := d.DB.WithContext(ctx).
		Model(model.User{}).
		Where("email = ?", email).
		Count(&n).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to check if user is registered, %w", err)
	}

	if n > 0 {
		return nil, ErrConflict
	}

	u := &model.User{
		ID:           util.RandStr(userIDSize),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Verified:     false,
		CreatedAt:    time.Now().UTC(),
	}

	if err := d.DB.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}

		return nil, fmt.Errorf("failed to create user, %w", err)
	}

	return u, nil
}

// MarkVerified flips the verified flag. ErrNotFound means no row matched
func (d *Directory) MarkVerified(ctx context.Context, email string) error {
	r := d.DB.WithContext(ctx).
		Model(model.User{}).
		Where("email = ?", email).
		Update("verified", true)
	if r.Error != nil {
		return fmt.Errorf("failed to verify user, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
