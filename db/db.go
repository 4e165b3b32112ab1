package db

import (
	"Gin_postgres_redis_borrow_admin/models"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN prefers DATABASE_URL and falls back to the discrete DB_* variables.
func DSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
}

func ConnectDB(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	zap.L().Info("database connected")
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Account{},
		&models.YearLevel{},
		&models.YearSection{},
		&models.Student{},
		&models.Professor{},
		&models.Equipment{},
		&models.Transaction{},
		&models.TxEquipment{},
		&models.TxEquipmentHist{},
	); err != nil {
		return err
	}

	// a piece of equipment is outstanding on at most one transaction
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_equipment
	  ON %s (equipment_id);
	`, models.TxEquipmentTable, models.TxEquipmentTable)).Error; err != nil {
		return err
	}

	// matching returns by borrower/professor among open transactions
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_by_people
	  ON %s (borrower_id, professor_id)
	  WHERE returned_at IS NULL;
	`, models.TransactionTable, models.TransactionTable)).Error; err != nil {
		return err
	}
	return nil
}
