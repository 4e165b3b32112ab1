package db

import (
	"context"
	"time"

	"Gin_postgres_redis_borrow_admin/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Equipment

func (r *Repo) FindEquipmentByBarcode(ctx context.Context, barcode string) (*models.Equipment, error) {
	var e models.Equipment
	if err := r.DB.WithContext(ctx).First(&e, "barcode = ?", barcode).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// LockEquipments re-reads the given rows; inside WithinTx on Postgres they
// stay locked until commit so the borrow check and the flag write cannot
// interleave with another request.
func (r *Repo) LockEquipments(ctx context.Context, ids []uint) ([]models.Equipment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := r.DB.WithContext(ctx)
	if r.rowLocks() {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var es []models.Equipment
	if err := q.Where("id IN ?", ids).Order("id").Find(&es).Error; err != nil {
		return nil, err
	}
	return es, nil
}

func (r *Repo) SetEquipmentBorrowed(ctx context.Context, ids []uint, borrowed bool) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&models.Equipment{}).
		Where("id IN ? AND is_duplicable = ?", ids, false).
		Updates(map[string]any{
			"is_borrowed": borrowed,
			"updated_at":  time.Now(),
		}).Error
}

// EquipmentOutstanding reports whether any transaction still holds the item.
func (r *Repo) EquipmentOutstanding(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.TxEquipment{}).
		Where("equipment_id = ?", id).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Transactions

func preloadTransaction(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Equipments", func(db *gorm.DB) *gorm.DB { return db.Order("equipment_code") }).
		Preload("EquipmentsHist", func(db *gorm.DB) *gorm.DB { return db.Order("equipment_code") }).
		Preload("Borrower.YearLevel").
		Preload("Borrower.YearSection").
		Preload("Professor")
}

func (r *Repo) FindTransaction(ctx context.Context, code string) (*models.Transaction, error) {
	var t models.Transaction
	if err := preloadTransaction(r.DB.WithContext(ctx)).
		First(&t, "tx_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) ListTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error) {
	q := preloadTransaction(r.DB.WithContext(ctx).Model(&models.Transaction{})).Order("id")
	if !f.Historical {
		q = q.Where("delete_flag = ?", false)
	}
	if f.Returned != nil {
		outstanding := r.DB.Table(models.TxEquipmentTable + " te").
			Select("1").
			Where("te.transaction_id = " + models.TransactionTable + ".id")
		if *f.Returned {
			q = q.Where("NOT EXISTS (?)", outstanding)
		} else {
			q = q.Where("EXISTS (?)", outstanding)
		}
	}
	if f.From != nil {
		q = q.Where("borrowed_at > ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("borrowed_at < ?", *f.To)
	}
	var ts []models.Transaction
	if err := q.Find(&ts).Error; err != nil {
		return nil, err
	}
	return ts, nil
}

// SaveTransaction inserts or updates the row and rewrites both equipment
// sets from t.Equipments / t.EquipmentsHist. Equipment rows themselves are
// never written here.
func (r *Repo) SaveTransaction(ctx context.Context, t *models.Transaction) error {
	if t.Borrower != nil {
		t.BorrowerID = t.Borrower.ID
	}
	if t.Professor != nil {
		t.ProfessorID = t.Professor.ID
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(t).Error; err != nil {
			return err
		}
		if err := tx.Where("transaction_id = ?", t.ID).Delete(&models.TxEquipment{}).Error; err != nil {
			return err
		}
		if len(t.Equipments) > 0 {
			rows := make([]models.TxEquipment, 0, len(t.Equipments))
			for _, e := range t.Equipments {
				rows = append(rows, models.TxEquipment{TransactionID: t.ID, EquipmentID: e.ID})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("transaction_id = ?", t.ID).Delete(&models.TxEquipmentHist{}).Error; err != nil {
			return err
		}
		if len(t.EquipmentsHist) > 0 {
			rows := make([]models.TxEquipmentHist, 0, len(t.EquipmentsHist))
			for _, e := range t.EquipmentsHist {
				rows = append(rows, models.TxEquipmentHist{TransactionID: t.ID, EquipmentID: e.ID})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repo) DeleteTransaction(ctx context.Context, t *models.Transaction) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", t.ID).Delete(&models.TxEquipment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("transaction_id = ?", t.ID).Delete(&models.TxEquipmentHist{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Transaction{}, t.ID).Error
	})
}
