package models

import "time"

const AccountTable = "eb_accounts"

type AccountType string

const (
	AccountAdmin   AccountType = "ADMIN"
	AccountStudent AccountType = "STUDENT"
	AccountProf    AccountType = "PROF"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountAdmin, AccountStudent, AccountProf:
		return true
	}
	return false
}

type Account struct {
	ID          uint        `gorm:"primaryKey" json:"-"`
	Username    string      `gorm:"size:120;uniqueIndex;not null" json:"username"`
	Password    string      `gorm:"size:255;not null" json:"-"` // bcrypt hash
	AccountType AccountType `gorm:"size:20;not null" json:"accountType"`
	FullName    string      `gorm:"size:255" json:"fullName"`
	Email       string      `gorm:"size:255" json:"email"`
	LastSeenAt  *time.Time  `gorm:"index" json:"lastSeenAt,omitempty"`
	DeleteFlag  bool        `gorm:"not null" json:"deleteFlag"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (Account) TableName() string      { return AccountTable }
func (Account) KeyColumn() string      { return "username" }
func (a Account) KeyValue() any        { return a.Username }
func (a Account) IsDeleted() bool      { return a.DeleteFlag }
func (a *Account) SetDeleted(del bool) { a.DeleteFlag = del }
