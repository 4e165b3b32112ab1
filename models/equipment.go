package models

import "time"

const EquipmentTable = "eb_equipments"

type EquipmentStatus string

const (
	EquipmentGood      EquipmentStatus = "GOOD"
	EquipmentDefective EquipmentStatus = "DEFECTIVE"
)

func (s EquipmentStatus) Valid() bool { return s == EquipmentGood || s == EquipmentDefective }

// Equipment is either a unique asset (IsDuplicable=false) tracked through
// IsBorrowed, or a consumable that is never tracked as out.
type Equipment struct {
	ID             uint            `gorm:"primaryKey" json:"-"`
	EquipmentCode  string          `gorm:"size:64;uniqueIndex;not null" json:"equipmentCode"`
	Barcode        string          `gorm:"size:120;uniqueIndex;not null" json:"barcode"`
	Name           string          `gorm:"size:200;not null" json:"name"`
	Status         EquipmentStatus `gorm:"size:20;not null" json:"status"`
	DefectiveSince *time.Time      `json:"defectiveSince,omitempty"`
	IsDuplicable   bool            `gorm:"not null" json:"isDuplicable"`
	IsBorrowed     bool            `gorm:"not null" json:"isBorrowed"` // cached; Transaction.Equipments is the source of truth
	DeleteFlag     bool            `gorm:"not null" json:"deleteFlag"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (Equipment) TableName() string      { return EquipmentTable }
func (Equipment) KeyColumn() string      { return "equipment_code" }
func (e Equipment) KeyValue() any        { return e.EquipmentCode }
func (e Equipment) IsDeleted() bool      { return e.DeleteFlag }
func (e *Equipment) SetDeleted(del bool) { e.DeleteFlag = del }
