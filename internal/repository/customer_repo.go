package repository

import (
	"context"
	"errors"

	"receivables/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCustomerNotFound = errors.New("客户不存在")
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// List 按创建时间倒序返回全部客户
func (r *CustomerRepository) List(ctx context.Context) ([]*model.Customer, error) {
	customers := make([]*model.Customer, 0)
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "createdAt"}, Desc: true}).
		Find(&customers).Error
	return customers, err
}

func (r *CustomerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// Update 只覆盖 name / contact / phone，createdAt 保持不变
func (r *CustomerRepository) Update(ctx context.Context, id, name, contact, phone string) error {
	return r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":    name,
			"contact": contact,
			"phone":   phone,
		}).Error
}

// CreateIfAbsent 按主键幂等写入，已存在时不做任何修改
func (r *CustomerRepository) CreateIfAbsent(ctx context.Context, customer *model.Customer) (bool, error) {
	_, err := r.GetByID(ctx, customer.ID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrCustomerNotFound) {
		return false, err
	}
	if err := r.Create(ctx, customer); err != nil {
		return false, err
	}
	return true, nil
}
