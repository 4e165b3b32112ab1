package db

import (
	"Gin_postgres_redis_borrow_admin/models"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	DB   *gorm.DB
	inTx bool
}

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

var _ Store = (*Repo)(nil)

func (r *Repo) WithinTx(ctx context.Context, fn func(Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{DB: tx, inTx: true})
	})
}

// rowLocks reports whether reads meant for a check-then-set should take
// FOR UPDATE locks; SQLite has no row locks.
func (r *Repo) rowLocks() bool {
	return r.inTx && r.DB.Dialector.Name() == "postgres"
}

func (r *Repo) Accounts() Table[models.Account]         { return gormTable[models.Account, *models.Account]{r.DB} }
func (r *Repo) Students() Table[models.Student]         { return gormTable[models.Student, *models.Student]{r.DB} }
func (r *Repo) Professors() Table[models.Professor]     { return gormTable[models.Professor, *models.Professor]{r.DB} }
func (r *Repo) Equipments() Table[models.Equipment]     { return gormTable[models.Equipment, *models.Equipment]{r.DB} }
func (r *Repo) YearLevels() Table[models.YearLevel]     { return gormTable[models.YearLevel, *models.YearLevel]{r.DB} }
func (r *Repo) YearSections() Table[models.YearSection] { return gormTable[models.YearSection, *models.YearSection]{r.DB} }

// gormTable serves any reference model through its natural-key column.
type gormTable[T any, P models.RecordPtr[T]] struct{ db *gorm.DB }

func (t gormTable[T, P]) List(ctx context.Context, includeDeleted bool) ([]T, error) {
	q := t.db.WithContext(ctx).Preload(clause.Associations).Order("id")
	if !includeDeleted {
		q = q.Where("delete_flag = ?", false)
	}
	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (t gormTable[T, P]) FindByKey(ctx context.Context, key any) (*T, error) {
	var rec T
	col := P(&rec).KeyColumn()
	if err := t.db.WithContext(ctx).Preload(clause.Associations).
		Where(col+" = ?", key).
		First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (t gormTable[T, P]) FindByKeyFold(ctx context.Context, key string) (*T, error) {
	var rec T
	col := P(&rec).KeyColumn()
	if err := t.db.WithContext(ctx).Preload(clause.Associations).
		Where("LOWER("+col+") = LOWER(?)", key).
		Order("id").
		First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (t gormTable[T, P]) Create(ctx context.Context, rec *T) error {
	return t.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error
}

func (t gormTable[T, P]) Save(ctx context.Context, rec *T) error {
	return t.db.WithContext(ctx).Omit(clause.Associations).Save(rec).Error
}

// Accounts

func (r *Repo) TouchAccountSeen(ctx context.Context, username string) error {
	return r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("username = ?", username).
		Update("last_seen_at", time.Now().UTC()).Error
}
