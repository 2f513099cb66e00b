package repository

import (
	"context"
	"errors"

	"receivables/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPaymentNotFound = errors.New("收款记录不存在")
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List 按收款日期倒序返回全部收款记录
func (r *PaymentRepository) List(ctx context.Context) ([]*model.Payment, error) {
	payments := make([]*model.Payment, 0)
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true}).
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*model.Payment, error) {
	if tx == nil {
		tx = r.db
	}
	var payment model.Payment
	err := tx.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// Update 整行覆盖可变字段，status 可被直接改写
func (r *PaymentRepository) Update(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]interface{}{
			"date":         payment.Date,
			"customerId":   payment.CustomerID,
			"customerName": payment.CustomerName,
			"amount":       payment.Amount,
			"status":       payment.Status,
			"businessDate": payment.BusinessDate,
			"remarks":      payment.Remarks,
		}).Error
}

// Delete 删除记录，记录不存在时不报错
func (r *PaymentRepository) Delete(ctx context.Context, tx *gorm.DB, id string) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).Where("id = ?", id).Delete(&model.Payment{})
	return result.RowsAffected, result.Error
}

// VerifyBatch 一条 UPDATE 语句批量核销
// ids 为空时直接返回，不访问数据库
func (r *PaymentRepository) VerifyBatch(ctx context.Context, tx *gorm.DB, ids []string, businessDate, remarks *string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":       model.PaymentStatusVerified,
			"businessDate": businessDate,
			"remarks":      remarks,
		})
	return result.RowsAffected, result.Error
}

// UndoVerification 撤销核销，清空核销日期和备注
func (r *PaymentRepository) UndoVerification(ctx context.Context, tx *gorm.DB, id string) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.PaymentStatusUnverified,
			"businessDate": nil,
			"remarks":      nil,
		})
	return result.RowsAffected, result.Error
}

// CreateIfAbsent 按主键幂等写入
func (r *PaymentRepository) CreateIfAbsent(ctx context.Context, payment *model.Payment) (bool, error) {
	_, err := r.GetByID(ctx, nil, payment.ID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrPaymentNotFound) {
		return false, err
	}
	if err := r.Create(ctx, nil, payment); err != nil {
		return false, err
	}
	return true, nil
}

// ExistingIDs 返回 ids 中实际存在的记录ID
func (r *PaymentRepository) ExistingIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]string, error) {
	existing := make([]string, 0, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	if tx == nil {
		tx = r.db
	}
	err := tx.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id IN ?", ids).
		Order("id ASC").
		Pluck("id", &existing).Error
	return existing, err
}
