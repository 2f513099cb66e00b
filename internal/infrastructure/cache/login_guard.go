package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// LoginGuard 统计每个用户名的连续登录失败次数
//
// 窗口内失败次数达到上限后拒绝继续尝试，登录成功时清零。
// client 为 nil 时所有方法都是空操作，未启用 Redis 的部署不受影响。
type LoginGuard struct {
	client      *redis.Client
	maxFailures int
	window      time.Duration
}

func NewLoginGuard(client *redis.Client, maxFailures int, window time.Duration) *LoginGuard {
	return &LoginGuard{
		client:      client,
		maxFailures: maxFailures,
		window:      window,
	}
}

func (g *LoginGuard) enabled() bool {
	return g != nil && g.client != nil && g.maxFailures > 0
}

func failureKey(username string) string {
	return fmt.Sprintf("receivables:login:fail:%s", username)
}

// Blocked 当前用户名是否已被暂时锁定
func (g *LoginGuard) Blocked(ctx context.Context, username string) (bool, error) {
	if !g.enabled() {
		return false, nil
	}
	count, err := g.client.Get(ctx, failureKey(username)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= g.maxFailures, nil
}

// RecordFailure 失败次数加一，首次失败时设置窗口过期时间
func (g *LoginGuard) RecordFailure(ctx context.Context, username string) error {
	if !g.enabled() {
		return nil
	}
	key := failureKey(username)
	count, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return g.client.Expire(ctx, key, g.window).Err()
	}
	return nil
}

// Reset 登录成功后清除计数
func (g *LoginGuard) Reset(ctx context.Context, username string) error {
	if !g.enabled() {
		return nil
	}
	return g.client.Del(ctx, failureKey(username)).Err()
}
