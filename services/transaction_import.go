package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"Gin_postgres_redis_borrow_admin/db"
	"Gin_postgres_redis_borrow_admin/models"
)

// TransactionImport is one transaction as read back from a spreadsheet.
// EquipmentCodes is the full historical set; Outstanding names the items
// still out and is folded into the historical set if missing there.
type TransactionImport struct {
	TxCode         string
	EquipmentCodes []string
	Outstanding    []string
	Borrower       string
	Professor      string
	BorrowedAt     *time.Time
	ReturnedAt     *time.Time
	Status         models.TxStatus
	DeleteFlag     *bool
}

// AddOrUpdate inserts transactions whose code is unknown and, with
// overwrite, rewrites the ones that differ under sameTransaction. Flags of
// non-duplicable equipment follow the outstanding sets: released items are
// cleared, newly outstanding items must be available and get stamped.
func (s *TransactionService) AddOrUpdate(ctx context.Context, in []TransactionImport, overwrite bool) (int, error) {
	changed := 0
	err := s.store.WithinTx(ctx, func(st db.Store) error {
		changed = 0
		for _, imp := range in {
			if imp.TxCode == "" {
				return BadRequest("transaction code is required")
			}
			if imp.Status == "" {
				imp.Status = models.TxPending
			}
			if !imp.Status.Valid() {
				return BadRequest("invalid transaction status %q", imp.Status)
			}
			stored, err := st.FindTransaction(ctx, imp.TxCode)
			switch {
			case isNotFound(err):
				if err := s.applyImported(ctx, st, &models.Transaction{TxCode: imp.TxCode}, imp); err != nil {
					return err
				}
				changed++
			case err != nil:
				return err
			case overwrite && !sameTransaction(stored, imp):
				if err := s.applyImported(ctx, st, stored, imp); err != nil {
					return err
				}
				changed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// applyImported moves t onto imp and saves it.
func (s *TransactionService) applyImported(ctx context.Context, st db.Store, t *models.Transaction, imp TransactionImport) error {
	outstanding := dedupe(imp.Outstanding)
	hist := dedupe(append(slices.Clone(imp.EquipmentCodes), outstanding...))

	histRows, err := lookupEquipment(ctx, st, hist)
	if err != nil {
		return err
	}
	locked, err := lockInOrder(ctx, st, histRows)
	if err != nil {
		return err
	}
	next := nonDuplicable(pick(locked, outstanding))

	released := without(t.Equipments, next)
	added := without(next, t.Equipments)
	if err := checkAvailable(added); err != nil {
		return err
	}
	if _, err := st.LockEquipments(ctx, ids(released)); err != nil {
		return err
	}
	if err := markBorrowed(ctx, st, released, false); err != nil {
		return err
	}
	if err := markBorrowed(ctx, st, added, true); err != nil {
		return err
	}
	for i := range locked {
		switch {
		case containsEquipment(added, locked[i]):
			locked[i].IsBorrowed = true
		case containsEquipment(released, locked[i]):
			locked[i].IsBorrowed = false
		}
	}

	borrower, professor, err := lookupPeople(ctx, st, imp.Borrower, imp.Professor)
	if err != nil {
		return err
	}
	t.EquipmentsHist = locked
	t.Equipments = nonDuplicable(pick(locked, outstanding))
	t.Borrower, t.Professor = borrower, professor
	t.Status = imp.Status
	if imp.BorrowedAt != nil {
		t.BorrowedAt = imp.BorrowedAt
	} else if t.BorrowedAt == nil {
		now := s.now()
		t.BorrowedAt = &now
	}
	// a blank returnedAt keeps the stored stamp unless items are out again
	switch {
	case imp.ReturnedAt != nil:
		t.ReturnedAt = imp.ReturnedAt
	case len(t.Equipments) > 0:
		t.ReturnedAt = nil
	}
	if imp.DeleteFlag != nil {
		t.DeleteFlag = *imp.DeleteFlag
	}
	return saveTransaction(ctx, st, t)
}

// sameTransaction ignores ordering of equipment lists. A nil incoming
// deleteFlag or borrowedAt, or a nil returnedAt on either side, is not a
// difference.
func sameTransaction(stored *models.Transaction, in TransactionImport) bool {
	outstanding := dedupe(in.Outstanding)
	hist := dedupe(append(slices.Clone(in.EquipmentCodes), outstanding...))
	slices.Sort(hist)
	slices.Sort(outstanding)
	if !slices.Equal(equipmentCodes(stored.EquipmentsHist), hist) {
		return false
	}
	if !slices.Equal(equipmentCodes(nonDuplicable(stored.Equipments)), outstandingNonDuplicable(stored, outstanding)) {
		return false
	}
	if stored.Borrower == nil || !strings.EqualFold(stored.Borrower.StudentNumber, strings.TrimSpace(in.Borrower)) {
		return false
	}
	if stored.Professor == nil || !strings.EqualFold(stored.Professor.Name, strings.TrimSpace(in.Professor)) {
		return false
	}
	if stored.Status != in.Status {
		return false
	}
	if in.BorrowedAt != nil && !sameInstant(stored.BorrowedAt, in.BorrowedAt) {
		return false
	}
	if stored.ReturnedAt != nil && in.ReturnedAt != nil && !sameInstant(stored.ReturnedAt, in.ReturnedAt) {
		return false
	}
	if in.DeleteFlag != nil && stored.DeleteFlag != *in.DeleteFlag {
		return false
	}
	return true
}

// outstandingNonDuplicable drops the codes the stored history knows to be
// duplicable; those are never kept outstanding.
func outstandingNonDuplicable(stored *models.Transaction, codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		dup := false
		for _, e := range stored.EquipmentsHist {
			if e.EquipmentCode == c && e.IsDuplicable {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

// lookupEquipment resolves codes one by one on st. Soft-deleted equipment
// still resolves: history may name retired items.
func lookupEquipment(ctx context.Context, st db.Store, codes []string) ([]models.Equipment, error) {
	out := make([]models.Equipment, 0, len(codes))
	var missing []string
	for _, c := range codes {
		e, err := st.Equipments().FindByKey(ctx, c)
		if isNotFound(err) {
			missing = append(missing, c)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if len(missing) > 0 {
		return nil, NotFound("equipment not found: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// lookupPeople is resolvePeople without the soft-delete filter.
func lookupPeople(ctx context.Context, st db.Store, studentNumber, professorName string) (*models.Student, *models.Professor, error) {
	borrower, err := st.Students().FindByKeyFold(ctx, strings.TrimSpace(studentNumber))
	if err != nil {
		return nil, nil, storeErr(err, "student "+studentNumber)
	}
	professor, err := st.Professors().FindByKeyFold(ctx, strings.TrimSpace(professorName))
	if err != nil {
		return nil, nil, storeErr(err, "professor "+professorName)
	}
	return borrower, professor, nil
}

// pick keeps the rows of es named in codes.
func pick(es []models.Equipment, codes []string) []models.Equipment {
	out := make([]models.Equipment, 0, len(codes))
	for _, e := range es {
		if slices.Contains(codes, e.EquipmentCode) {
			out = append(out, e)
		}
	}
	return out
}
