package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"receivables/internal/config"
	"receivables/internal/model"
	"receivables/internal/repository"
	"receivables/pkg/idgen"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidPaymentStatus = errors.New("收款状态无效")
)

type PaymentService struct {
	db          *gorm.DB
	cfg         *config.Config
	paymentRepo *repository.PaymentRepository
	outboxRepo  *repository.OutboxRepository
	log         *zap.Logger
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, log *zap.Logger) *PaymentService {
	return &PaymentService{
		db:          db,
		cfg:         cfg,
		paymentRepo: repository.NewPaymentRepository(db),
		outboxRepo:  repository.NewOutboxRepository(db),
		log:         log.Named("payment"),
	}
}

type CreatePaymentRequest struct {
	Date         string           `json:"date" binding:"required"`
	CustomerID   string           `json:"customerId" binding:"required"`
	CustomerName string           `json:"customerName" binding:"required"`
	Amount       *decimal.Decimal `json:"amount" binding:"required"`
}

// UpdatePaymentRequest 整行覆盖，status 允许直接改写为两个合法取值之一
type UpdatePaymentRequest struct {
	Date         string           `json:"date" binding:"required"`
	CustomerID   string           `json:"customerId" binding:"required"`
	CustomerName string           `json:"customerName" binding:"required"`
	Amount       *decimal.Decimal `json:"amount" binding:"required"`
	Status       string           `json:"status" binding:"required"`
	BusinessDate *string          `json:"businessDate"`
	Remarks      *string          `json:"remarks"`
}

type VerifyRequest struct {
	IDs          []string `json:"ids"`
	BusinessDate *string  `json:"businessDate"`
	Remarks      *string  `json:"remarks"`
}

// paymentEvent outbox 消息体
type paymentEvent struct {
	EventID    string      `json:"eventId"`
	Type       string      `json:"type"`
	PaymentID  string      `json:"paymentId"`
	OccurredAt string      `json:"occurredAt"`
	Data       interface{} `json:"data,omitempty"`
}

// nullable 空字符串按 NULL 存储
func nullable(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// dedupe 去重并保持原有顺序
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *PaymentService) List(ctx context.Context) ([]*model.Payment, error) {
	return s.paymentRepo.List(ctx)
}

// Create 新增收款记录，状态固定为未核销
func (s *PaymentService) Create(ctx context.Context, req *CreatePaymentRequest) (*model.Payment, error) {
	payment := &model.Payment{
		ID:           idgen.GeneratePaymentID(),
		Date:         req.Date,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Amount:       *req.Amount,
		Status:       model.PaymentStatusUnverified,
		CreatedAt:    model.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
			return fmt.Errorf("创建收款记录失败: %w", err)
		}
		return s.appendEvent(ctx, tx, model.EventPaymentCreated, payment.ID, payment)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("收款记录已创建",
		zap.String("id", payment.ID),
		zap.String("customer_id", payment.CustomerID),
		zap.String("amount", payment.Amount.String()))
	return payment, nil
}

// Update 覆盖收款记录全部可变字段
// 记录不存在时返回 repository.ErrPaymentNotFound
func (s *PaymentService) Update(ctx context.Context, id string, req *UpdatePaymentRequest) (*model.Payment, error) {
	if !model.IsValidPaymentStatus(req.Status) {
		return nil, ErrInvalidPaymentStatus
	}

	payment := &model.Payment{
		ID:           id,
		Date:         req.Date,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Amount:       *req.Amount,
		Status:       req.Status,
		BusinessDate: nullable(req.BusinessDate),
		Remarks:      nullable(req.Remarks),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.paymentRepo.GetByID(ctx, tx, id); err != nil {
			return err
		}
		if err := s.paymentRepo.Update(ctx, tx, payment); err != nil {
			return fmt.Errorf("更新收款记录失败: %w", err)
		}
		return s.appendEvent(ctx, tx, model.EventPaymentUpdated, id, payment)
	})
	if err != nil {
		return nil, err
	}

	return s.paymentRepo.GetByID(ctx, nil, id)
}

// Delete 删除收款记录，记录不存在也视为成功
func (s *PaymentService) Delete(ctx context.Context, id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		affected, err := s.paymentRepo.Delete(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("删除收款记录失败: %w", err)
		}
		if affected == 0 {
			return nil
		}
		return s.appendEvent(ctx, tx, model.EventPaymentDeleted, id, nil)
	})
}

// Verify 批量核销，ids 为空时不做任何修改
func (s *PaymentService) Verify(ctx context.Context, req *VerifyRequest) error {
	ids := dedupe(req.IDs)
	if len(ids) == 0 {
		return nil
	}
	businessDate, remarks := nullable(req.BusinessDate), nullable(req.Remarks)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		affected, err := s.paymentRepo.VerifyBatch(ctx, tx, ids, businessDate, remarks)
		if err != nil {
			return fmt.Errorf("批量核销失败: %w", err)
		}
		if affected == 0 || !s.cfg.EventsEnabled() {
			return nil
		}

		existing, err := s.paymentRepo.ExistingIDs(ctx, tx, ids)
		if err != nil {
			return fmt.Errorf("查询核销记录失败: %w", err)
		}
		data := map[string]interface{}{
			"businessDate": businessDate,
			"remarks":      remarks,
		}
		for _, id := range existing {
			if err := s.appendEvent(ctx, tx, model.EventPaymentVerified, id, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("批量核销完成", zap.Int("count", len(ids)))
	return nil
}

// UndoVerification 撤销核销，清空核销日期和备注
func (s *PaymentService) UndoVerification(ctx context.Context, id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		affected, err := s.paymentRepo.UndoVerification(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("撤销核销失败: %w", err)
		}
		if affected == 0 {
			return nil
		}
		return s.appendEvent(ctx, tx, model.EventPaymentUnverified, id, nil)
	})
}

// appendEvent 与业务数据同一事务写入 outbox，未启用 Kafka 时跳过
func (s *PaymentService) appendEvent(ctx context.Context, tx *gorm.DB, eventType, paymentID string, data interface{}) error {
	if !s.cfg.EventsEnabled() {
		return nil
	}

	payload, err := json.Marshal(paymentEvent{
		EventID:    idgen.GenerateEventID(),
		Type:       eventType,
		PaymentID:  paymentID,
		OccurredAt: model.Now(),
		Data:       data,
	})
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	msg := &model.OutboxMessage{
		MessageKey: paymentID,
		EventType:  eventType,
		Topic:      s.cfg.Kafka.Topic.PaymentEvents,
		Payload:    string(payload),
		Status:     model.OutboxStatusPending,
	}
	if err := s.outboxRepo.Create(ctx, tx, msg); err != nil {
		return fmt.Errorf("写入消息失败: %w", err)
	}
	return nil
}
