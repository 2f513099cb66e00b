package model

// DefaultAccountID 单账户系统中唯一的账户ID
const DefaultAccountID = "acc1"

// Account 登录账户表
// 系统只有一个共享账户，更新时始终以 DefaultAccountID 为目标
type Account struct {
	ID        string `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	Username  string `gorm:"column:username;type:varchar(128);uniqueIndex;not null" json:"username"`
	Password  string `gorm:"column:password;type:varchar(255);not null" json:"-"` // bcrypt 哈希，不对外输出
	CreatedAt string `gorm:"column:createdAt;type:varchar(32);not null" json:"createdAt"`
}

func (Account) TableName() string {
	return "accounts"
}

// Identity 登录成功后返回的公开身份
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
