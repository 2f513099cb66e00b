package handler

import (
	"errors"
	"time"

	"receivables/internal/config"
	"receivables/internal/infrastructure/cache"
	"receivables/internal/repository"
	"receivables/internal/service"
	"receivables/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	accountService  *service.AccountService
	customerService *service.CustomerService
	paymentService  *service.PaymentService
	log             *zap.Logger
}

// NewHandler 创建处理器实例，rdb 为 nil 时不启用登录限流
func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config, log *zap.Logger) *Handler {
	var limiter service.LoginLimiter
	if rdb != nil {
		limiter = cache.NewLoginGuard(rdb, cfg.Business.LoginMaxFailures,
			time.Duration(cfg.Business.LoginLockMinutes)*time.Minute)
	}

	return &Handler{
		accountService:  service.NewAccountService(db, limiter, log),
		customerService: service.NewCustomerService(db),
		paymentService:  service.NewPaymentService(db, cfg, log),
		log:             log.Named("handler"),
	}
}

// fail 业务错误映射为 HTTP 状态码，其余按存储错误处理
// message 是该接口对外的 500 提示，具体错误只写日志
func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c)
	case errors.Is(err, service.ErrTooManyAttempts):
		response.TooManyRequests(c)
	case errors.Is(err, repository.ErrCustomerNotFound), errors.Is(err, repository.ErrPaymentNotFound):
		response.NotFound(c)
	case errors.Is(err, service.ErrInvalidPaymentStatus), errors.Is(err, service.ErrPasswordTooLong):
		response.ParamError(c, err.Error())
	default:
		h.log.Error(message,
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.Error(err))
		response.ServerError(c, message)
	}
}

// ============================================================
// 账户相关接口
// ============================================================

// LoginRequest 登录请求，空用户名按凭证错误处理
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 登录
// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	identity, err := h.accountService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err, response.MsgDatabaseError)
		return
	}

	response.Success(c, identity)
}

type UpdateAccountRequest struct {
	Username    string `json:"username" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// UpdateAccount 修改账户用户名和密码
// PUT /api/auth/account
func (h *Handler) UpdateAccount(c *gin.Context) {
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	username, err := h.accountService.UpdateAccount(c.Request.Context(), req.Username, req.NewPassword)
	if err != nil {
		h.fail(c, err, response.MsgUpdateFailed)
		return
	}

	response.Success(c, gin.H{"username": username})
}

// ============================================================
// 客户相关接口
// ============================================================

// ListCustomers GET /api/customers
func (h *Handler) ListCustomers(c *gin.Context) {
	customers, err := h.customerService.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, response.MsgDatabaseError)
		return
	}
	response.Success(c, customers)
}

// CreateCustomer POST /api/customers
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err, response.MsgCreateFailed)
		return
	}
	response.Success(c, customer)
}

// UpdateCustomer PUT /api/customers/:id
func (h *Handler) UpdateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.fail(c, err, response.MsgUpdateFailed)
		return
	}
	response.Success(c, customer)
}

// ============================================================
// 收款相关接口
// ============================================================

// ListPayments GET /api/payments
func (h *Handler) ListPayments(c *gin.Context) {
	payments, err := h.paymentService.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, response.MsgDatabaseError)
		return
	}
	response.Success(c, payments)
}

// CreatePayment POST /api/payments
func (h *Handler) CreatePayment(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	payment, err := h.paymentService.Create(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err, response.MsgCreateFailed)
		return
	}
	response.Success(c, payment)
}

// UpdatePayment PUT /api/payments/:id
func (h *Handler) UpdatePayment(c *gin.Context) {
	var req service.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	payment, err := h.paymentService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.fail(c, err, response.MsgUpdateFailed)
		return
	}
	response.Success(c, payment)
}

// DeletePayment DELETE /api/payments/:id
func (h *Handler) DeletePayment(c *gin.Context) {
	if err := h.paymentService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, response.MsgDeleteFailed)
		return
	}
	response.OK(c)
}

// VerifyPayments 批量核销
// POST /api/payments/verify
func (h *Handler) VerifyPayments(c *gin.Context) {
	var req service.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.paymentService.Verify(c.Request.Context(), &req); err != nil {
		h.fail(c, err, response.MsgVerifyFailed)
		return
	}
	response.OK(c)
}

// UndoVerification 撤销核销
// POST /api/payments/:id/undo-verification
func (h *Handler) UndoVerification(c *gin.Context) {
	if err := h.paymentService.UndoVerification(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, response.MsgUndoFailed)
		return
	}
	response.OK(c)
}
