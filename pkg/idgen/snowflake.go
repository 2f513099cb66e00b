package idgen

import (
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
)

// ============================================================================
// ID 生成器
// ============================================================================
//
// 客户、收款记录的主键使用雪花ID加业务前缀：
//
//   c1780542217523806208   客户
//   p1780542217523806209   收款记录
//
// 同一节点生成的ID全局唯一且按时间趋势递增；多实例部署时通过 worker_id 区分节点。
// 事件ID使用 ULID，便于按时间排序排查。
//
// ============================================================================

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Init 初始化默认节点，workerID 取值 0-1023
func Init(workerID int64) error {
	n, err := snowflake.NewNode(workerID)
	if err != nil {
		return fmt.Errorf("初始化ID生成器失败: %w", err)
	}

	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

func defaultNode() *snowflake.Node {
	mu.Lock()
	defer mu.Unlock()

	if node == nil {
		// 未显式初始化时使用 workerID = 1
		node, _ = snowflake.NewNode(1)
	}
	return node
}

// NextID 生成下一个雪花ID
func NextID() int64 {
	return defaultNode().Generate().Int64()
}

// GenerateCustomerID 生成客户ID
func GenerateCustomerID() string {
	return fmt.Sprintf("c%d", NextID())
}

// GeneratePaymentID 生成收款记录ID
func GeneratePaymentID() string {
	return fmt.Sprintf("p%d", NextID())
}

// GenerateEventID 生成事件ID
func GenerateEventID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
