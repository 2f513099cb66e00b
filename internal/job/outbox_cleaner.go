package job

import (
	"context"
	"time"

	"receivables/internal/config"
	"receivables/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OutboxCleaner 定期清理已投递的 outbox 消息
type OutboxCleaner struct {
	outboxRepo *repository.OutboxRepository
	retention  time.Duration
	log        *zap.Logger
	stopCh     chan struct{}
	interval   time.Duration
	now        func() time.Time
}

func NewOutboxCleaner(db *gorm.DB, cfg *config.Config, log *zap.Logger) *OutboxCleaner {
	return &OutboxCleaner{
		outboxRepo: repository.NewOutboxRepository(db),
		retention:  time.Duration(cfg.Business.OutboxRetentionHours) * time.Hour,
		log:        log.Named("outbox_cleaner"),
		stopCh:     make(chan struct{}),
		interval:   10 * time.Minute,
		now:        time.Now,
	}
}

func (j *OutboxCleaner) Start(ctx context.Context) {
	j.log.Info("outbox 清理任务启动", zap.Duration("retention", j.retention))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info("收到停止信号，任务退出")
			return
		case <-j.stopCh:
			j.log.Info("任务停止")
			return
		case <-ticker.C:
			j.purge(ctx)
		}
	}
}

func (j *OutboxCleaner) Stop() {
	close(j.stopCh)
}

func (j *OutboxCleaner) purge(ctx context.Context) {
	if j.retention <= 0 {
		return
	}

	deleted, err := j.outboxRepo.DeleteSentBefore(ctx, j.now().Add(-j.retention))
	if err != nil {
		j.log.Error("清理消息失败", zap.Error(err))
		return
	}
	if deleted > 0 {
		j.log.Info("已清理过期消息", zap.Int64("count", deleted))
	}
}
