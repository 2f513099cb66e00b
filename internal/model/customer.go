package model

// Customer 客户表
type Customer struct {
	ID        string `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	Name      string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Contact   string `gorm:"column:contact;type:varchar(128);not null" json:"contact"`
	Phone     string `gorm:"column:phone;type:varchar(64);not null" json:"phone"`
	CreatedAt string `gorm:"column:createdAt;type:varchar(32);not null;index" json:"createdAt"` // 创建后不再修改
}

func (Customer) TableName() string {
	return "customers"
}
