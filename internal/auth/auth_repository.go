package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ninahidul9/connect-chat/internal/models"
)

var ErrAccountNotFound = errors.New("auth: account not found")

type Repository interface {
	CreateAccount(ctx context.Context, acct *models.Account, profile *models.Profile) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// CreateAccount creates the credential row and the public profile together;
// the account id doubles as the profile id.
func (r *gormRepository) CreateAccount(ctx context.Context, acct *models.Account, profile *models.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Where("email = ?", acct.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return errors.New("email already registered")
		}
		if err := tx.Create(acct).Error; err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
}

func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var acct models.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}
