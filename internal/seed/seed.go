// Package seed 首次启动时写入默认账户和演示数据
package seed

import (
	"context"
	"fmt"
	"time"

	"receivables/internal/config"
	"receivables/internal/infrastructure/lock"
	"receivables/internal/model"
	"receivables/internal/repository"
	"receivables/internal/service"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var defaultCustomers = []model.Customer{
	{ID: "c1", Name: "上海宏泰塑胶有限公司", Contact: "王经理", Phone: "138-0000-1111"},
	{ID: "c2", Name: "深圳飞龙模具制造厂", Contact: "李主管", Phone: "139-2222-3333"},
	{ID: "c3", Name: "大友硅胶工艺制品部", Contact: "刘工", Phone: "137-4444-5555"},
}

var defaultPayments = []model.Payment{
	{ID: "p1", Date: "2023-10-12", CustomerID: "c1", CustomerName: "上海宏泰塑胶有限公司", Amount: decimal.NewFromInt(45000), Status: model.PaymentStatusVerified, BusinessDate: strPtr("2023-10-15"), Remarks: strPtr("月结款项")},
	{ID: "p2", Date: "2023-11-05", CustomerID: "c2", CustomerName: "深圳飞龙模具制造厂", Amount: decimal.NewFromInt(12800), Status: model.PaymentStatusUnverified},
	{ID: "p3", Date: "2023-11-20", CustomerID: "c1", CustomerName: "上海宏泰塑胶有限公司", Amount: decimal.NewFromInt(3500), Status: model.PaymentStatusUnverified},
	{ID: "p4", Date: "2023-12-01", CustomerID: "c3", CustomerName: "大友硅胶工艺制品部", Amount: decimal.NewFromInt(220000), Status: model.PaymentStatusUnverified},
}

func strPtr(s string) *string { return &s }

// Seeder 按主键幂等写入初始化数据，已存在的记录保持不变
type Seeder struct {
	cfg         *config.SeedConfig
	redis       *redis.Client
	accountRepo *repository.AccountRepository
	customers   *repository.CustomerRepository
	payments    *repository.PaymentRepository
	log         *zap.Logger
}

// NewSeeder redisClient 可以为 nil，此时不加分布式锁
func NewSeeder(db *gorm.DB, cfg *config.SeedConfig, redisClient *redis.Client, log *zap.Logger) *Seeder {
	return &Seeder{
		cfg:         cfg,
		redis:       redisClient,
		accountRepo: repository.NewAccountRepository(db),
		customers:   repository.NewCustomerRepository(db),
		payments:    repository.NewPaymentRepository(db),
		log:         log.Named("seed"),
	}
}

func (s *Seeder) Run(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.log.Info("跳过初始化数据")
		return nil
	}

	if s.redis != nil {
		seedLock := lock.NewSeedLock(s.redis)
		if err := seedLock.Lock(ctx, 200*time.Millisecond, 150); err != nil {
			return fmt.Errorf("获取初始化锁失败: %w", err)
		}
		defer func() {
			if err := seedLock.Unlock(context.Background()); err != nil {
				s.log.Warn("释放初始化锁失败", zap.Error(err))
			}
		}()
	}

	if err := s.seedAccount(ctx); err != nil {
		return err
	}

	created := 0
	for i := range defaultCustomers {
		customer := defaultCustomers[i]
		customer.CreatedAt = model.Now()
		ok, err := s.customers.CreateIfAbsent(ctx, &customer)
		if err != nil {
			return fmt.Errorf("写入默认客户 %s 失败: %w", customer.ID, err)
		}
		if ok {
			created++
		}
	}

	for i := range defaultPayments {
		payment := defaultPayments[i]
		payment.CreatedAt = model.Now()
		ok, err := s.payments.CreateIfAbsent(ctx, &payment)
		if err != nil {
			return fmt.Errorf("写入默认收款记录 %s 失败: %w", payment.ID, err)
		}
		if ok {
			created++
		}
	}

	s.log.Info("初始化数据完成", zap.Int("created", created))
	return nil
}

// seedAccount 默认账户只写入一次，账户改名后不会重新创建
func (s *Seeder) seedAccount(ctx context.Context) error {
	exists, err := s.accountRepo.ExistsByID(ctx, model.DefaultAccountID)
	if err != nil {
		return fmt.Errorf("查询默认账户失败: %w", err)
	}
	if !exists {
		exists, err = s.accountRepo.ExistsByUsername(ctx, s.cfg.Account.Username)
		if err != nil {
			return fmt.Errorf("查询默认账户失败: %w", err)
		}
	}
	if exists {
		return nil
	}

	hash, err := service.HashPassword(s.cfg.Account.Password)
	if err != nil {
		return err
	}

	err = s.accountRepo.Create(ctx, &model.Account{
		ID:        model.DefaultAccountID,
		Username:  s.cfg.Account.Username,
		Password:  hash,
		CreatedAt: model.Now(),
	})
	if err != nil {
		return fmt.Errorf("写入默认账户失败: %w", err)
	}

	s.log.Info("默认账户已创建", zap.String("username", s.cfg.Account.Username))
	return nil
}
