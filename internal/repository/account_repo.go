package repository

import (
	"context"
	"errors"

	"receivables/internal/model"

	"gorm.io/gorm"
)

var (
	ErrAccountNotFound = errors.New("账户不存在")
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

func (r *AccountRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// UpdateCredentials 覆盖指定账户的用户名和密码哈希，不校验旧密码
func (r *AccountRepository) UpdateCredentials(ctx context.Context, id, username, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"username": username,
			"password": passwordHash,
		}).Error
}
