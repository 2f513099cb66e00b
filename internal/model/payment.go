package model

import (
	"github.com/shopspring/decimal"
)

const (
	PaymentStatusUnverified = "unverified" // 未核销
	PaymentStatusVerified   = "verified"   // 已核销
)

func init() {
	// 金额以 JSON 数字输出，与前端约定一致
	decimal.MarshalJSONWithoutQuotes = true
}

// IsValidPaymentStatus 状态只允许两个取值
func IsValidPaymentStatus(status string) bool {
	return status == PaymentStatusUnverified || status == PaymentStatusVerified
}

// Payment 收款记录表
//
// CustomerName 是记账时客户名称的冗余副本，客户改名后不会同步。
// BusinessDate / Remarks 只在核销时写入，撤销核销时清空。
type Payment struct {
	ID           string          `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	Date         string          `gorm:"column:date;type:varchar(32);not null;index" json:"date"`
	CustomerID   string          `gorm:"column:customerId;type:varchar(64);not null;index" json:"customerId"`
	CustomerName string          `gorm:"column:customerName;type:varchar(255);not null" json:"customerName"`
	Amount       decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Status       string          `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	BusinessDate *string         `gorm:"column:businessDate;type:varchar(32)" json:"businessDate"`
	Remarks      *string         `gorm:"column:remarks;type:varchar(512)" json:"remarks"`
	CreatedAt    string          `gorm:"column:createdAt;type:varchar(32);not null" json:"createdAt"`
}

func (Payment) TableName() string {
	return "payments"
}
