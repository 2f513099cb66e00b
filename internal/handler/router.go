package handler

import (
	"net/http"

	"receivables/internal/config"
	"receivables/internal/infrastructure/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config, log *zap.Logger, m *metrics.HTTPMetrics) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(log))
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware())
	if m != nil {
		r.Use(m.Middleware())
	}

	// 创建处理器
	h := NewHandler(db, rdb, cfg, log)

	api := r.Group("/api")
	{
		// 账户相关
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Login)
			auth.PUT("/account", h.UpdateAccount)
		}

		// 客户相关
		customers := api.Group("/customers")
		{
			customers.GET("", h.ListCustomers)
			customers.POST("", h.CreateCustomer)
			customers.PUT("/:id", h.UpdateCustomer)
		}

		// 收款相关
		payments := api.Group("/payments")
		{
			payments.GET("", h.ListPayments)
			payments.POST("", h.CreatePayment)
			payments.POST("/verify", h.VerifyPayments)
			payments.PUT("/:id", h.UpdatePayment)
			payments.DELETE("/:id", h.DeletePayment)
			payments.POST("/:id/undo-verification", h.UndoVerification)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if m != nil {
		r.GET("/metrics", m.Handler())
	}

	return r
}
