package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"Gin_postgres_redis_borrow_admin/db"
	"Gin_postgres_redis_borrow_admin/models"
	"Gin_postgres_redis_borrow_admin/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRepo opens a private in-memory database. A single connection keeps
// every query on the same memory database.
func newTestRepo(t *testing.T) *db.Repo {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(conn))
	return db.NewRepo(conn)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent map[string]string // username -> password
}

func (m *recordingMailer) SendPassword(_ context.Context, _, username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sent == nil {
		m.sent = map[string]string{}
	}
	m.sent[username] = password
	return nil
}

func (m *recordingMailer) password(username string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.sent[username]
	return p, ok
}

type fixture struct {
	ctx        context.Context
	repo       *db.Repo
	mailer     *recordingMailer
	redis      *miniredis.Miniredis
	accounts   *AccountService
	years      *YearLevelService
	sections   *YearSectionService
	students   *StudentService
	professors *ProfessorService
	equipment  *EquipmentService
	txs        *TransactionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newTestRepo(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mailer := &recordingMailer{}
	accounts := NewAccountService(repo,
		NewTokenIssuer("test-secret", time.Minute),
		session.NewRefreshStore(rdb, time.Hour),
		mailer)
	accounts.hashCost = bcrypt.MinCost

	return &fixture{
		ctx:        context.Background(),
		repo:       repo,
		mailer:     mailer,
		redis:      mr,
		accounts:   accounts,
		years:      NewYearLevelService(repo),
		sections:   NewYearSectionService(repo),
		students:   NewStudentService(repo, accounts, mailer),
		professors: NewProfessorService(repo, accounts, mailer),
		equipment:  NewEquipmentService(repo),
		txs:        NewTransactionService(repo),
	}
}

// seedPeople creates year 1, section A, student S1 and professor P1.
func (f *fixture) seedPeople(t *testing.T) (*models.Student, *models.Professor) {
	t.Helper()
	_, err := f.years.Create(f.ctx, &models.YearLevel{YearNumber: 1})
	require.NoError(t, err)
	_, err = f.sections.Create(f.ctx, &models.YearSection{SectionName: "A"})
	require.NoError(t, err)
	st, err := f.students.Create(f.ctx, &models.Student{
		StudentNumber: "2021-00001",
		FirstName:     "Juan",
		LastName:      "Dela Cruz",
		Email:         "juan@example.edu",
		YearLevel:     &models.YearLevel{YearNumber: 1},
		YearSection:   &models.YearSection{SectionName: "A"},
	})
	require.NoError(t, err)
	p, err := f.professors.Create(f.ctx, &models.Professor{Name: "Ada Lovelace", Email: "ada@example.edu"})
	require.NoError(t, err)
	return st, p
}

func (f *fixture) addEquipment(t *testing.T, barcode string, duplicable bool) *models.Equipment {
	t.Helper()
	e, err := f.equipment.Create(f.ctx, &models.Equipment{
		Barcode:      barcode,
		Name:         "item " + barcode,
		IsDuplicable: duplicable,
	})
	require.NoError(t, err)
	return e
}

func (f *fixture) reload(t *testing.T, e *models.Equipment) *models.Equipment {
	t.Helper()
	got, err := f.repo.Equipments().FindByKey(f.ctx, e.EquipmentCode)
	require.NoError(t, err)
	return got
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, status, StatusOf(err), err.Error())
}
