package controllers

import (
	"net/http/httptest"
	"testing"
	"time"

	"Gin_postgres_redis_borrow_admin/models"
	"Gin_postgres_redis_borrow_admin/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransaction() models.Transaction {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	projector := models.Equipment{EquipmentCode: "EQ-1", Barcode: "BC-1", Name: "Projector", Status: models.EquipmentGood, IsBorrowed: true}
	cable := models.Equipment{EquipmentCode: "EQ-2", Barcode: "BC-2", Name: "Cable", Status: models.EquipmentGood, IsDuplicable: true}
	return models.Transaction{
		TxCode:         "tx-1",
		Equipments:     []models.Equipment{projector},
		EquipmentsHist: []models.Equipment{projector, cable},
		Borrower: &models.Student{
			StudentNumber: "2021-00001", FirstName: "Juan", LastName: "Dela Cruz",
			YearLevel:   &models.YearLevel{YearNumber: 1, YearName: "First"},
			YearSection: &models.YearSection{SectionName: "A"},
		},
		Professor:  &models.Professor{Name: "Ada Lovelace"},
		BorrowedAt: &at,
		Status:     models.TxPending,
	}
}

func TestTransactionSummaryDTO(t *testing.T) {
	got := toTransactionSummaryDTO(sampleTransaction())
	assert.Equal(t, "tx-1", got.TxCode)
	assert.Equal(t, []string{"EQ-1"}, got.Equipments)
	assert.Equal(t, []string{"EQ-1", "EQ-2"}, got.EquipmentsHist)
	assert.Equal(t, "2021-00001", got.Borrower)
	assert.Equal(t, "Juan Dela Cruz", got.BorrowerName)
	assert.Equal(t, "Ada Lovelace", got.Professor)
	assert.False(t, got.Returned)
}

func TestTransactionDTO(t *testing.T) {
	tx := sampleTransaction()
	got := toTransactionDTO(tx)
	require.Len(t, got.Equipments, 1)
	assert.True(t, got.Equipments[0].IsBorrowed)
	require.Len(t, got.EquipmentsHist, 2)
	assert.True(t, got.EquipmentsHist[1].IsDuplicable)
	require.NotNil(t, got.Borrower)
	require.NotNil(t, got.Borrower.YearLevel)
	assert.Equal(t, "First", got.Borrower.YearLevel.YearName)
	assert.Equal(t, "A", got.Borrower.YearSection.SectionName)
	assert.Equal(t, tx.BorrowedAt, got.BorrowedAt)

	tx.Equipments = nil
	tx.Borrower, tx.Professor = nil, nil
	got = toTransactionDTO(tx)
	assert.NotNil(t, got.Equipments, "empty list, not null")
	assert.True(t, got.Returned)
	assert.Nil(t, got.Borrower)
	assert.Nil(t, got.Professor)
}

func TestTransactionRequestMapping(t *testing.T) {
	req := TransactionRequest{
		Equipments: []equipmentRef{{EquipmentCode: "EQ-1"}, {EquipmentCode: "EQ-2"}},
		Borrower:   &borrowerRef{StudentNumber: "2021-00001"},
		Professor:  &professorRef{Name: "Ada Lovelace"},
		Status:     models.TxAccepted,
	}
	d, err := req.draft()
	require.NoError(t, err)
	assert.Equal(t, []string{"EQ-1", "EQ-2"}, d.EquipmentCodes)
	assert.Equal(t, "2021-00001", d.Borrower)

	p := req.patch()
	require.NotNil(t, p.Status)
	assert.Equal(t, models.TxAccepted, *p.Status)
	require.NotNil(t, p.Professor)
	assert.Equal(t, "Ada Lovelace", *p.Professor)

	empty := TransactionRequest{Equipments: []equipmentRef{}}
	assert.NotNil(t, empty.patch().EquipmentCodes, "present empty list clears the outstanding set")
	assert.Nil(t, TransactionRequest{}.patch().EquipmentCodes)
	assert.Nil(t, TransactionRequest{}.patch().Status)

	_, err = TransactionRequest{Professor: req.Professor}.draft()
	assert.Equal(t, 400, services.StatusOf(err))
}

func TestLoginResponseProfile(t *testing.T) {
	st := models.Student{StudentNumber: "2021-00001"}
	res := toLoginResponse(&services.LoginResult{
		Account:     models.Account{Username: "2021-00001", AccountType: models.AccountStudent},
		AccessToken: "a", RefreshToken: "r",
		Student: &st,
	})
	assert.Equal(t, StudentDTO{StudentNumber: "2021-00001"}, res.Profile)

	res = toLoginResponse(&services.LoginResult{Account: models.Account{Username: "admin"}})
	assert.Nil(t, res.Profile)
}

func TestQueryParsing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := func(rawQuery string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/x?"+rawQuery, nil)
		return c
	}

	b, err := boolQuery(ctx("complete"), "complete")
	require.NoError(t, err)
	assert.True(t, b)
	b, err = boolQuery(ctx(""), "complete")
	require.NoError(t, err)
	assert.False(t, b)
	_, err = boolQuery(ctx("complete=maybe"), "complete")
	assert.Error(t, err)

	r, err := optBoolQuery(ctx("returned=false"), "returned")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.False(t, *r)
	r, err = optBoolQuery(ctx(""), "returned")
	require.NoError(t, err)
	assert.Nil(t, r)

	ts, err := timeQuery(ctx("fromDate=2024-03-01T08:00:00"), "fromDate")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), *ts)
	ts, err = timeQuery(ctx("fromDate=2024-03-01T08:00:00%2B08:00"), "fromDate")
	require.NoError(t, err)
	assert.True(t, ts.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	_, err = timeQuery(ctx("fromDate=soon"), "fromDate")
	assert.Equal(t, 400, services.StatusOf(err))
}
