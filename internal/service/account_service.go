package service

import (
	"context"
	"errors"
	"fmt"

	"receivables/internal/model"
	"receivables/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PasswordCost bcrypt 计算成本
const PasswordCost = 10

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrTooManyAttempts    = errors.New("登录失败次数过多")
	ErrPasswordTooLong    = errors.New("密码长度超过72字节")
)

// LoginLimiter 登录失败计数，未启用时全部为空操作
type LoginLimiter interface {
	Blocked(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

type AccountService struct {
	accountRepo *repository.AccountRepository
	limiter     LoginLimiter
	log         *zap.Logger
}

func NewAccountService(db *gorm.DB, limiter LoginLimiter, log *zap.Logger) *AccountService {
	return &AccountService{
		accountRepo: repository.NewAccountRepository(db),
		limiter:     limiter,
		log:         log.Named("account"),
	}
}

// HashPassword 生成带随机盐的 bcrypt 哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("密码加密失败: %w", err)
	}
	return string(hash), nil
}

// Login 校验用户名和密码
// 用户不存在和密码错误返回同一个错误，不区分原因
func (s *AccountService) Login(ctx context.Context, username, password string) (*model.Identity, error) {
	if s.limiter != nil {
		blocked, err := s.limiter.Blocked(ctx, username)
		if err != nil {
			s.log.Warn("登录限流检查失败", zap.String("username", username), zap.Error(err))
		} else if blocked {
			return nil, ErrTooManyAttempts
		}
	}

	account, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			s.recordFailure(ctx, username)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("查询账户失败: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		s.recordFailure(ctx, username)
		return nil, ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, username); err != nil {
			s.log.Warn("清除登录失败计数失败", zap.String("username", username), zap.Error(err))
		}
	}

	return &model.Identity{ID: account.ID, Username: account.Username}, nil
}

func (s *AccountService) recordFailure(ctx context.Context, username string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, username); err != nil {
		s.log.Warn("记录登录失败次数失败", zap.String("username", username), zap.Error(err))
	}
}

// UpdateAccount 覆盖共享账户的用户名和密码，不要求旧密码
func (s *AccountService) UpdateAccount(ctx context.Context, username, newPassword string) (string, error) {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return "", err
	}

	if err := s.accountRepo.UpdateCredentials(ctx, model.DefaultAccountID, username, hash); err != nil {
		return "", fmt.Errorf("更新账户失败: %w", err)
	}

	s.log.Info("账户已更新", zap.String("username", username))
	return username, nil
}
