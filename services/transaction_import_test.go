package services

import (
	"net/http"
	"testing"
	"time"

	"Gin_postgres_redis_borrow_admin/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportTransactionsInsertsAndStampsOutstanding(t *testing.T) {
	f := newFixture(t)
	f.seedPeople(t)
	eq1 := f.addEquipment(t, "BC1", false)
	eq2 := f.addEquipment(t, "BC2", false)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	n, err := f.txs.AddOrUpdate(f.ctx, []TransactionImport{{
		TxCode:         "TX-1",
		EquipmentCodes: []string{eq1.EquipmentCode, eq2.EquipmentCode},
		Outstanding:    []string{eq2.EquipmentCode},
		Borrower:       borrowerS1,
		Professor:      professorP1,
		BorrowedAt:     &at,
		Status:         models.TxAccepted,
	}}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tx, err := f.txs.Get(f.ctx, "TX-1")
	require.NoError(t, err)
	assert.Equal(t, models.TxAccepted, tx.Status)
	assert.Equal(t, []string{eq2.EquipmentCode}, equipmentCodes(tx.Equipments))
	assert.Len(t, tx.EquipmentsHist, 2)
	assert.False(t, f.reload(t, eq1).IsBorrowed)
	assert.True(t, f.reload(t, eq2).IsBorrowed)
	f.requireFlagsConsistent(t)
}

func TestImportTransactionsWithoutOverwriteLeavesExisting(t *testing.T) {
	f := newFixture(t)
	f.seedPeople(t)
	eq1 := f.addEquipment(t, "BC1", false)
	tx := f.borrow(t, eq1)

	n, err := f.txs.AddOrUpdate(f.ctx, []TransactionImport{{
		TxCode:         tx.TxCode,
		EquipmentCodes: []string{eq1.EquipmentCode},
		Borrower:       borrowerS1,
		Professor:      professorP1,
		Status:         models.TxDenied,
	}}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	stored, err := f.txs.Get(f.ctx, tx.TxCode)
	require.NoError(t, err)
	assert.Equal(t, models.TxPending, stored.Status)
	assert.True(t, f.reload(t, eq1).IsBorrowed)
}

func TestImportTransactionsOverwriteOnlyCountsDifferences(t *testing.T) {
	f := newFixture(t)
	f.seedPeople(t)
	eq1 := f.addEquipment(t, "BC1", false)
	eq2 := f.addEquipment(t, "BC2", true)
	tx := f.borrow(t, eq1, eq2)

	same := TransactionImport{
		TxCode: tx.TxCode,
		// order and case do not matter, nil returnedAt and deleteFlag are not differences
		EquipmentCodes: []string{eq2.EquipmentCode, eq1.EquipmentCode},
		Outstanding:    []string{eq1.EquipmentCode},
		Borrower:       borrowerS1,
		Professor:      "ADA LOVELACE",
		BorrowedAt:     tx.BorrowedAt,
		Status:         models.TxPending,
	}
	n, err := f.txs.AddOrUpdate(f.ctx, []TransactionImport{same}, true)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	returnedAt := time.Now().UTC().Truncate(time.Second)
	changed := same
	changed.Outstanding = nil
	changed.ReturnedAt = &returnedAt
	n, err = f.txs.AddOrUpdate(f.ctx, []TransactionImport{changed}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := f.txs.Get(f.ctx, tx.TxCode)
	require.NoError(t, err)
	assert.Empty(t, stored.Equipments)
	assert.NotNil(t, stored.ReturnedAt)
	assert.False(t, f.reload(t, eq1).IsBorrowed)
	f.requireFlagsConsistent(t)
}

func TestImportTransactionsRejectsEquipmentHeldElsewhere(t *testing.T) {
	f := newFixture(t)
	f.seedPeople(t)
	eq1 := f.addEquipment(t, "BC1", false)
	f.borrow(t, eq1)

	_, err := f.txs.AddOrUpdate(f.ctx, []TransactionImport{{
		TxCode:         "TX-2",
		EquipmentCodes: []string{eq1.EquipmentCode},
		Outstanding:    []string{eq1.EquipmentCode},
		Borrower:       borrowerS1,
		Professor:      professorP1,
	}}, true)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.txs.Get(f.ctx, "TX-2")
	requireStatus(t, err, http.StatusNotFound)
}

func TestSameTransactionToleratesNilSides(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	stored := &models.Transaction{
		TxCode:         "TX-1",
		EquipmentsHist: []models.Equipment{{EquipmentCode: "EQ-B"}, {EquipmentCode: "EQ-A"}},
		Equipments:     []models.Equipment{{EquipmentCode: "EQ-A"}},
		Borrower:       &models.Student{StudentNumber: "2021-00001"},
		Professor:      &models.Professor{Name: "Ada Lovelace"},
		BorrowedAt:     &at,
		ReturnedAt:     &at,
		Status:         models.TxPending,
		DeleteFlag:     true,
	}
	in := TransactionImport{
		TxCode:         "TX-1",
		EquipmentCodes: []string{"EQ-A", "EQ-B"},
		Outstanding:    []string{"EQ-A"},
		Borrower:       "2021-00001",
		Professor:      "ada lovelace",
		BorrowedAt:     &at,
		Status:         models.TxPending,
	}
	assert.True(t, sameTransaction(stored, in))

	deleted := false
	in.DeleteFlag = &deleted
	assert.False(t, sameTransaction(stored, in))

	in.DeleteFlag = nil
	later := at.Add(time.Hour)
	in.ReturnedAt = &later
	assert.False(t, sameTransaction(stored, in))

	in.ReturnedAt = nil
	in.EquipmentCodes = []string{"EQ-A"}
	assert.False(t, sameTransaction(stored, in))
}

func TestImportTransactionsResolvesPeopleIgnoringCase(t *testing.T) {
	f := newFixture(t)
	_, p := f.seedPeople(t)
	eq1 := f.addEquipment(t, "BC1", false)
	tx := f.borrow(t, eq1)

	n, err := f.txs.AddOrUpdate(f.ctx, []TransactionImport{{
		TxCode:         tx.TxCode,
		EquipmentCodes: []string{eq1.EquipmentCode},
		Outstanding:    []string{eq1.EquipmentCode},
		Borrower:       borrowerS1,
		Professor:      "ada lovelace",
		Status:         models.TxAccepted,
	}}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := f.txs.Get(f.ctx, tx.TxCode)
	require.NoError(t, err)
	assert.Equal(t, models.TxAccepted, stored.Status)
	assert.Equal(t, p.ID, stored.Professor.ID)
	assert.True(t, f.reload(t, eq1).IsBorrowed)
	f.requireFlagsConsistent(t)
}

func TestImportTransactionsKeepsReturnedAtWhenBlank(t *testing.T) {
	f := newFixture(t)
	f.seedPeople(t)
	eq1 := f.addEquipment(t, "BC1", false)
	tx := f.borrow(t, eq1)
	returned, err := f.txs.Return(f.ctx, borrowerS1, professorP1, []string{"BC1"})
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnedAt)

	n, err := f.txs.AddOrUpdate(f.ctx, []TransactionImport{{
		TxCode:         tx.TxCode,
		EquipmentCodes: []string{eq1.EquipmentCode},
		Borrower:       borrowerS1,
		Professor:      professorP1,
		Status:         models.TxDenied,
	}}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := f.txs.Get(f.ctx, tx.TxCode)
	require.NoError(t, err)
	assert.Equal(t, models.TxDenied, stored.Status)
	require.NotNil(t, stored.ReturnedAt)
	assert.WithinDuration(t, *returned.ReturnedAt, *stored.ReturnedAt, time.Millisecond)

	// items out again: the old stamp no longer holds
	n, err = f.txs.AddOrUpdate(f.ctx, []TransactionImport{{
		TxCode:         tx.TxCode,
		EquipmentCodes: []string{eq1.EquipmentCode},
		Outstanding:    []string{eq1.EquipmentCode},
		Borrower:       borrowerS1,
		Professor:      professorP1,
		Status:         models.TxDenied,
	}}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	stored, err = f.txs.Get(f.ctx, tx.TxCode)
	require.NoError(t, err)
	assert.Nil(t, stored.ReturnedAt)
	f.requireFlagsConsistent(t)
}
