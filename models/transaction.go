package models

import "time"

const (
	TransactionTable     = "eb_transactions"
	TxEquipmentTable     = "eb_transaction_equipments"
	TxEquipmentHistTable = "eb_transaction_equipments_hist"
)

type TxStatus string

const (
	TxPending  TxStatus = "PENDING"
	TxAccepted TxStatus = "ACCEPTED"
	TxDenied   TxStatus = "DENIED"
)

func (s TxStatus) Valid() bool {
	switch s {
	case TxPending, TxAccepted, TxDenied:
		return true
	}
	return false
}

// Transaction is one borrow event. Equipments holds what is still out,
// EquipmentsHist everything that was handed over when it was created.
type Transaction struct {
	ID             uint        `gorm:"primaryKey" json:"-"`
	TxCode         string      `gorm:"size:64;uniqueIndex;not null" json:"txCode"`
	Equipments     []Equipment `gorm:"many2many:eb_transaction_equipments;" json:"equipments"`
	EquipmentsHist []Equipment `gorm:"many2many:eb_transaction_equipments_hist;" json:"equipmentsHist"`
	BorrowerID     uint        `gorm:"index;not null" json:"-"`
	Borrower       *Student    `gorm:"foreignKey:BorrowerID" json:"borrower,omitempty"`
	ProfessorID    uint        `gorm:"index;not null" json:"-"`
	Professor      *Professor  `gorm:"foreignKey:ProfessorID" json:"professor,omitempty"`
	BorrowedAt     *time.Time  `gorm:"index" json:"borrowedAt,omitempty"`
	ReturnedAt     *time.Time  `gorm:"index" json:"returnedAt,omitempty"`
	Status         TxStatus    `gorm:"size:20;not null" json:"status"`
	DeleteFlag     bool        `gorm:"not null" json:"deleteFlag"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

func (Transaction) TableName() string { return TransactionTable }

// Returned reports whether every tracked item came back.
func (t Transaction) Returned() bool { return len(t.Equipments) == 0 }

// TxEquipment and TxEquipmentHist are the join rows behind the two
// many2many sets; the repo writes them directly.
type TxEquipment struct {
	TransactionID uint `gorm:"primaryKey"`
	EquipmentID   uint `gorm:"primaryKey"`
}

func (TxEquipment) TableName() string { return TxEquipmentTable }

type TxEquipmentHist struct {
	TransactionID uint `gorm:"primaryKey"`
	EquipmentID   uint `gorm:"primaryKey"`
}

func (TxEquipmentHist) TableName() string { return TxEquipmentHistTable }
