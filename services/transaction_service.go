package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"Gin_postgres_redis_borrow_admin/db"
	"Gin_postgres_redis_borrow_admin/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// resolveParallelism bounds concurrent equipment lookups per request.
const resolveParallelism = 8

// TransactionService is the borrow/return engine. Every mutating call runs
// in one store transaction: availability checks, isBorrowed flags and the
// transaction row commit together or not at all.
type TransactionService struct {
	store   db.Store
	now     func() time.Time
	newCode func() string
}

func NewTransactionService(store db.Store) *TransactionService {
	return &TransactionService{store: store, now: time.Now, newCode: uuid.NewString}
}

type TransactionDraft struct {
	TxCode         string
	EquipmentCodes []string
	Borrower       string // student number
	Professor      string // professor name
	BorrowedAt     *time.Time
}

// TransactionPatch merges onto a stored transaction; nil fields are kept.
// A non-nil EquipmentCodes (even empty) replaces the outstanding set.
type TransactionPatch struct {
	EquipmentCodes []string
	Borrower       *string
	Professor      *string
	Status         *models.TxStatus
	BorrowedAt     *time.Time
	ReturnedAt     *time.Time
	DeleteFlag     *bool
}

func (s *TransactionService) Get(ctx context.Context, code string) (*models.Transaction, error) {
	t, err := s.store.FindTransaction(ctx, code)
	if err != nil {
		return nil, storeErr(err, "transaction "+code)
	}
	return t, nil
}

func (s *TransactionService) List(ctx context.Context, f db.TransactionFilter) ([]models.Transaction, error) {
	return s.store.ListTransactions(ctx, f)
}

// Create borrows the requested equipment. A single non-duplicable item that
// is already out fails the whole request and nothing is flagged.
func (s *TransactionService) Create(ctx context.Context, d TransactionDraft) (*models.Transaction, error) {
	if d.TxCode != "" {
		_, err := s.store.FindTransaction(ctx, d.TxCode)
		if err == nil {
			return nil, BadRequest("transaction %s already exists", d.TxCode)
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	codes := dedupe(d.EquipmentCodes)
	if len(codes) == 0 {
		return nil, BadRequest("at least one equipment is required")
	}
	resolved, err := s.resolveByCode(ctx, codes)
	if err != nil {
		return nil, err
	}

	var out *models.Transaction
	err = s.store.WithinTx(ctx, func(st db.Store) error {
		locked, err := lockInOrder(ctx, st, resolved)
		if err != nil {
			return err
		}
		if err := checkAvailable(locked); err != nil {
			return err
		}
		if err := markBorrowed(ctx, st, locked, true); err != nil {
			return err
		}
		borrower, professor, err := resolvePeople(ctx, st, d.Borrower, d.Professor)
		if err != nil {
			return err
		}
		t := &models.Transaction{
			TxCode:         s.newCode(),
			EquipmentsHist: locked,
			Equipments:     nonDuplicable(locked),
			Borrower:       borrower,
			Professor:      professor,
			BorrowedAt:     d.BorrowedAt,
			Status:         models.TxPending,
			DeleteFlag:     false,
		}
		if t.BorrowedAt == nil {
			now := s.now()
			t.BorrowedAt = &now
		}
		if err := saveTransaction(ctx, st, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("transaction created",
		zap.String("txCode", out.TxCode),
		zap.String("borrower", out.Borrower.StudentNumber),
		zap.Int("outstanding", len(out.Equipments)))
	return out, nil
}

// Update merges p onto the stored transaction. A new equipment list goes
// through the same availability check as Create, but isBorrowed flags are
// left untouched: items added here are not stamped and items dropped here
// are not released.
func (s *TransactionService) Update(ctx context.Context, code string, p TransactionPatch) (*models.Transaction, error) {
	var resolved []models.Equipment
	if p.EquipmentCodes != nil {
		var err error
		if resolved, err = s.resolveByCode(ctx, dedupe(p.EquipmentCodes)); err != nil {
			return nil, err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return nil, BadRequest("invalid transaction status %q", *p.Status)
	}

	var out *models.Transaction
	err := s.store.WithinTx(ctx, func(st db.Store) error {
		t, err := st.FindTransaction(ctx, code)
		if err != nil {
			return storeErr(err, "transaction "+code)
		}
		if p.EquipmentCodes != nil {
			locked, err := lockInOrder(ctx, st, resolved)
			if err != nil {
				return err
			}
			if err := checkAvailable(locked); err != nil {
				return err
			}
			t.Equipments = nonDuplicable(locked)
		}
		if p.Borrower != nil || p.Professor != nil {
			borrowerKey, professorKey := t.Borrower.StudentNumber, t.Professor.Name
			if p.Borrower != nil {
				borrowerKey = *p.Borrower
			}
			if p.Professor != nil {
				professorKey = *p.Professor
			}
			if t.Borrower, t.Professor, err = resolvePeople(ctx, st, borrowerKey, professorKey); err != nil {
				return err
			}
		}
		if p.Status != nil {
			t.Status = *p.Status
		}
		if p.BorrowedAt != nil {
			t.BorrowedAt = p.BorrowedAt
		}
		if p.ReturnedAt != nil {
			t.ReturnedAt = p.ReturnedAt
		}
		if p.DeleteFlag != nil {
			t.DeleteFlag = *p.DeleteFlag
		}
		if err := saveTransaction(ctx, st, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Return checks equipment back in. The open transaction of borrower and
// professor (both matched case-insensitively) whose outstanding set holds
// every returned item is updated; returnedAt is stamped once nothing is
// left outstanding.
func (s *TransactionService) Return(ctx context.Context, borrower, professor string, barcodes []string) (*models.Transaction, error) {
	barcodes = dedupe(barcodes)
	if len(barcodes) == 0 {
		return nil, BadRequest("at least one barcode is required")
	}
	returned, err := resolveAll(ctx, barcodes, "equipment with barcode", s.store.FindEquipmentByBarcode)
	if err != nil {
		return nil, err
	}

	var out *models.Transaction
	err = s.store.WithinTx(ctx, func(st db.Store) error {
		tracked := nonDuplicable(returned)
		if _, err := st.LockEquipments(ctx, ids(tracked)); err != nil {
			return err
		}
		candidates, err := st.ListTransactions(ctx, db.TransactionFilter{Historical: true})
		if err != nil {
			return err
		}
		t := matchOpenTransaction(candidates, borrower, professor, returned)
		if t == nil {
			return NotFound("no open transaction of %s with %s holds the returned equipment", borrower, professor)
		}
		t.Equipments = without(t.Equipments, tracked)
		if err := markBorrowed(ctx, st, tracked, false); err != nil {
			return err
		}
		if len(t.Equipments) == 0 {
			now := s.now()
			t.ReturnedAt = &now
		}
		if err := saveTransaction(ctx, st, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("equipment returned",
		zap.String("txCode", out.TxCode),
		zap.Strings("barcodes", barcodes),
		zap.Bool("complete", out.ReturnedAt != nil))
	return out, nil
}

// SoftDelete force-returns what is still out and flags the transaction.
// Deleting an already flagged transaction is a BAD_REQUEST.
func (s *TransactionService) SoftDelete(ctx context.Context, code string) error {
	return s.store.WithinTx(ctx, func(st db.Store) error {
		t, err := st.FindTransaction(ctx, code)
		if err != nil {
			return storeErr(err, "transaction "+code)
		}
		if t.DeleteFlag {
			return BadRequest("transaction %s is already deleted", code)
		}
		if err := s.forceReturn(ctx, st, t); err != nil {
			return err
		}
		t.DeleteFlag = true
		return saveTransaction(ctx, st, t)
	})
}

// Delete force-returns what is still out and removes the transaction.
func (s *TransactionService) Delete(ctx context.Context, code string) error {
	return s.store.WithinTx(ctx, func(st db.Store) error {
		t, err := st.FindTransaction(ctx, code)
		if err != nil {
			return storeErr(err, "transaction "+code)
		}
		if err := s.forceReturn(ctx, st, t); err != nil {
			return err
		}
		return st.DeleteTransaction(ctx, t)
	})
}

func (s *TransactionService) forceReturn(ctx context.Context, st db.Store, t *models.Transaction) error {
	out := nonDuplicable(t.Equipments)
	if _, err := st.LockEquipments(ctx, ids(out)); err != nil {
		return err
	}
	if err := markBorrowed(ctx, st, out, false); err != nil {
		return err
	}
	t.Equipments = nil
	if t.ReturnedAt == nil {
		now := s.now()
		t.ReturnedAt = &now
	}
	return nil
}

// resolveByCode looks every code up concurrently; soft-deleted equipment
// counts as missing.
func (s *TransactionService) resolveByCode(ctx context.Context, codes []string) ([]models.Equipment, error) {
	return resolveAll(ctx, codes, "equipment", func(ctx context.Context, code string) (*models.Equipment, error) {
		e, err := s.store.Equipments().FindByKey(ctx, code)
		if err == nil && e.DeleteFlag {
			return nil, gorm.ErrRecordNotFound
		}
		return e, err
	})
}

// resolveAll runs the independent lookups in parallel. Every missing key is
// reported in one NOT_FOUND; other errors abort.
func resolveAll(ctx context.Context, keys []string, what string, lookup func(context.Context, string) (*models.Equipment, error)) ([]models.Equipment, error) {
	out := make([]models.Equipment, len(keys))
	var (
		mu      sync.Mutex
		missing []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveParallelism)
	for i, key := range keys {
		g.Go(func() error {
			e, err := lookup(gctx, key)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				mu.Lock()
				missing = append(missing, key)
				mu.Unlock()
				return nil
			}
			if err != nil {
				return err
			}
			out[i] = *e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, NotFound("%s not found: %s", what, strings.Join(missing, ", "))
	}
	return out, nil
}

// lockInOrder re-reads resolved equipment under the transaction (row locks
// on Postgres) and returns the fresh rows in request order.
func lockInOrder(ctx context.Context, st db.Store, resolved []models.Equipment) ([]models.Equipment, error) {
	fresh, err := st.LockEquipments(ctx, ids(resolved))
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Equipment, len(fresh))
	for _, e := range fresh {
		byID[e.ID] = e
	}
	out := make([]models.Equipment, 0, len(resolved))
	for _, e := range resolved {
		f, ok := byID[e.ID]
		if !ok {
			return nil, NotFound("equipment not found: %s", e.EquipmentCode)
		}
		out = append(out, f)
	}
	return out, nil
}

// checkAvailable fails with every non-duplicable item that is already out,
// including items the transaction being updated holds itself.
func checkAvailable(es []models.Equipment) error {
	var taken []string
	for _, e := range es {
		if e.IsDuplicable || !e.IsBorrowed {
			continue
		}
		taken = append(taken, e.EquipmentCode)
	}
	if len(taken) > 0 {
		return BadRequest("equipment already borrowed: %s", strings.Join(taken, ", "))
	}
	return nil
}

// markBorrowed writes isBorrowed on the non-duplicable items and mirrors it
// onto es.
func markBorrowed(ctx context.Context, st db.Store, es []models.Equipment, borrowed bool) error {
	if err := st.SetEquipmentBorrowed(ctx, ids(nonDuplicable(es)), borrowed); err != nil {
		return err
	}
	for i := range es {
		if !es[i].IsDuplicable {
			es[i].IsBorrowed = borrowed
		}
	}
	return nil
}

// resolvePeople matches both keys case-insensitively, as Return does.
func resolvePeople(ctx context.Context, st db.Store, studentNumber, professorName string) (*models.Student, *models.Professor, error) {
	borrower, err := st.Students().FindByKeyFold(ctx, strings.TrimSpace(studentNumber))
	if err == nil && borrower.DeleteFlag {
		err = gorm.ErrRecordNotFound
	}
	if err != nil {
		return nil, nil, storeErr(err, "student "+studentNumber)
	}
	professor, err := st.Professors().FindByKeyFold(ctx, strings.TrimSpace(professorName))
	if err == nil && professor.DeleteFlag {
		err = gorm.ErrRecordNotFound
	}
	if err != nil {
		return nil, nil, storeErr(err, "professor "+professorName)
	}
	return borrower, professor, nil
}

// saveTransaction maps the one-open-transaction-per-equipment index onto
// the same error the flag check gives.
func saveTransaction(ctx context.Context, st db.Store, t *models.Transaction) error {
	err := st.SaveTransaction(ctx, t)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return BadRequest("equipment already borrowed on another transaction")
	}
	return err
}

// matchOpenTransaction is a linear scan; transaction volume is small.
// Non-duplicable returns must still be outstanding on the match, duplicable
// ones must at least have been handed out with it.
func matchOpenTransaction(ts []models.Transaction, borrower, professor string, returned []models.Equipment) *models.Transaction {
	for i := range ts {
		t := &ts[i]
		if t.ReturnedAt != nil || t.Borrower == nil || t.Professor == nil {
			continue
		}
		if !strings.EqualFold(t.Borrower.StudentNumber, borrower) || !strings.EqualFold(t.Professor.Name, professor) {
			continue
		}
		ok := true
		for _, e := range returned {
			set := t.Equipments
			if e.IsDuplicable {
				set = t.EquipmentsHist
			}
			if !containsEquipment(set, e) {
				ok = false
				break
			}
		}
		if ok {
			return t
		}
	}
	return nil
}

func nonDuplicable(es []models.Equipment) []models.Equipment {
	out := make([]models.Equipment, 0, len(es))
	for _, e := range es {
		if !e.IsDuplicable {
			out = append(out, e)
		}
	}
	return out
}

func containsEquipment(es []models.Equipment, e models.Equipment) bool {
	for _, x := range es {
		if x.EquipmentCode == e.EquipmentCode {
			return true
		}
	}
	return false
}

// without is the set difference es \ drop by equipment code.
func without(es, drop []models.Equipment) []models.Equipment {
	out := make([]models.Equipment, 0, len(es))
	for _, e := range es {
		if !containsEquipment(drop, e) {
			out = append(out, e)
		}
	}
	return out
}

func ids(es []models.Equipment) []uint {
	out := make([]uint, 0, len(es))
	for _, e := range es {
		out = append(out, e.ID)
	}
	return out
}

func equipmentCodes(es []models.Equipment) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.EquipmentCode)
	}
	sort.Strings(out)
	return out
}
