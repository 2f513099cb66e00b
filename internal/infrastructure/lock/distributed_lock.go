package lock

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ============================================================================
// 分布式锁
// ============================================================================
//
// 多个实例共用同一个 MySQL / Postgres 时，启动阶段的初始化数据写入需要互斥，
// 否则两个实例可能同时判断"数据不存在"并重复插入，其中一个会因主键冲突启动失败。
//
// 加锁：SET key token NX PX ttl
// 释放：Lua 脚本比较 token 后再 DEL，只删除自己持有的锁
//
// ============================================================================

var (
	ErrLockFailed = errors.New("获取分布式锁失败")
)

const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// DistributedLock 基于 Redis 的互斥锁
type DistributedLock struct {
	client     *redis.Client
	key        string
	token      string // 锁持有者标识，释放时校验
	expiration time.Duration
}

func NewDistributedLock(client *redis.Client, key string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		token:      uuid.NewString(),
		expiration: expiration,
	}
}

// NewSeedLock 初始化数据写入锁
func NewSeedLock(client *redis.Client) *DistributedLock {
	return NewDistributedLock(client, "receivables:lock:seed", 30*time.Second)
}

// Key 锁的 key
func (l *DistributedLock) Key() string {
	return l.key
}

// TryLock 非阻塞加锁
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.token, l.expiration).Result()
}

// Lock 阻塞加锁，最多重试 maxRetries 次
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		ok, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return ErrLockFailed
}

// Unlock 释放锁
func (l *DistributedLock) Unlock(ctx context.Context) error {
	return l.client.Eval(ctx, unlockScript, []string{l.key}, l.token).Err()
}
