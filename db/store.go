package db

import (
	"context"
	"time"

	"Gin_postgres_redis_borrow_admin/models"
)

// Table is the natural-key CRUD surface shared by every reference model.
// Lookups that miss return gorm.ErrRecordNotFound; unique-index violations
// come back as gorm.ErrDuplicatedKey.
type Table[T any] interface {
	List(ctx context.Context, includeDeleted bool) ([]T, error)
	FindByKey(ctx context.Context, key any) (*T, error)
	// FindByKeyFold matches a text key ignoring case; the oldest row wins.
	FindByKeyFold(ctx context.Context, key string) (*T, error)
	Create(ctx context.Context, rec *T) error
	Save(ctx context.Context, rec *T) error
}

type TransactionFilter struct {
	Historical bool  // include soft-deleted
	Returned   *bool // nil: both
	From, To   *time.Time
}

// Store is what the services need from persistence. WithinTx hands fn a
// Store bound to a single database transaction; fn's error rolls it back.
type Store interface {
	WithinTx(ctx context.Context, fn func(Store) error) error

	Accounts() Table[models.Account]
	Students() Table[models.Student]
	Professors() Table[models.Professor]
	Equipments() Table[models.Equipment]
	YearLevels() Table[models.YearLevel]
	YearSections() Table[models.YearSection]

	FindEquipmentByBarcode(ctx context.Context, barcode string) (*models.Equipment, error)
	LockEquipments(ctx context.Context, ids []uint) ([]models.Equipment, error)
	SetEquipmentBorrowed(ctx context.Context, ids []uint, borrowed bool) error
	EquipmentOutstanding(ctx context.Context, id uint) (bool, error)

	FindTransaction(ctx context.Context, code string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error)
	SaveTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, t *models.Transaction) error

	TouchAccountSeen(ctx context.Context, username string) error
}
