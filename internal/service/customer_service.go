package service

import (
	"context"
	"fmt"

	"receivables/internal/model"
	"receivables/internal/repository"
	"receivables/pkg/idgen"

	"gorm.io/gorm"
)

type CustomerService struct {
	customerRepo *repository.CustomerRepository
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{
		customerRepo: repository.NewCustomerRepository(db),
	}
}

type CustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
}

func (s *CustomerService) List(ctx context.Context) ([]*model.Customer, error) {
	return s.customerRepo.List(ctx)
}

func (s *CustomerService) Create(ctx context.Context, req *CustomerRequest) (*model.Customer, error) {
	customer := &model.Customer{
		ID:        idgen.GenerateCustomerID(),
		Name:      req.Name,
		Contact:   req.Contact,
		Phone:     req.Phone,
		CreatedAt: model.Now(),
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("创建客户失败: %w", err)
	}
	return customer, nil
}

// Update 覆盖客户信息，返回更新后的记录
// 客户不存在时返回 repository.ErrCustomerNotFound
func (s *CustomerService) Update(ctx context.Context, id string, req *CustomerRequest) (*model.Customer, error) {
	if _, err := s.customerRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Update(ctx, id, req.Name, req.Contact, req.Phone); err != nil {
		return nil, fmt.Errorf("更新客户失败: %w", err)
	}

	return s.customerRepo.GetByID(ctx, id)
}
