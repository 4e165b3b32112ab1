package controllers

import (
	"net/http"

	"Gin_postgres_redis_borrow_admin/db"
	"Gin_postgres_redis_borrow_admin/excel"
	"Gin_postgres_redis_borrow_admin/services"

	"github.com/gin-gonic/gin"
)

type TransactionController struct{ *Srv }

func NewTransactionController(s *Srv) *TransactionController { return &TransactionController{Srv: s} }

// 借出: POST /transactions?complete
func (tc *TransactionController) Create(c *gin.Context) {
	complete, err := boolQuery(c, "complete")
	if err != nil {
		respondErr(c, err)
		return
	}
	var in TransactionRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	d, err := in.draft()
	if err != nil {
		respondErr(c, err)
		return
	}
	t, err := tc.Transactions.Create(c.Request.Context(), d)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, transactionView(*t, complete))
}

// PUT /transactions?code=
func (tc *TransactionController) Update(c *gin.Context) {
	complete, err := boolQuery(c, "complete")
	if err != nil {
		respondErr(c, err)
		return
	}
	code := c.Query("code")
	if code == "" {
		respondErr(c, services.BadRequest("code is required"))
		return
	}
	var in TransactionRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	t, err := tc.Transactions.Update(c.Request.Context(), code, in.patch())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionView(*t, complete))
}

// filter reads historical, returned, fromDate and toDate.
func transactionFilter(c *gin.Context) (db.TransactionFilter, error) {
	var (
		f   db.TransactionFilter
		err error
	)
	if f.Historical, err = boolQuery(c, "historical"); err != nil {
		return f, err
	}
	if f.Returned, err = optBoolQuery(c, "returned"); err != nil {
		return f, err
	}
	if f.From, err = timeQuery(c, "fromDate"); err != nil {
		return f, err
	}
	if f.To, err = timeQuery(c, "toDate"); err != nil {
		return f, err
	}
	return f, nil
}

func (tc *TransactionController) List(c *gin.Context) {
	complete, err := boolQuery(c, "complete")
	if err != nil {
		respondErr(c, err)
		return
	}
	f, err := transactionFilter(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	ts, err := tc.Transactions.List(c.Request.Context(), f)
	if err != nil {
		respondErr(c, err)
		return
	}
	out := make([]any, 0, len(ts))
	for _, t := range ts {
		out = append(out, transactionView(t, complete))
	}
	c.JSON(http.StatusOK, out)
}

func (tc *TransactionController) Get(c *gin.Context) {
	complete, err := boolQuery(c, "complete")
	if err != nil {
		respondErr(c, err)
		return
	}
	t, err := tc.Transactions.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionView(*t, complete))
}

// 归还: PUT /transactions/return?borrower=&professor=&barcodes=a&barcodes=b
func (tc *TransactionController) Return(c *gin.Context) {
	complete, err := boolQuery(c, "complete")
	if err != nil {
		respondErr(c, err)
		return
	}
	borrower, professor := c.Query("borrower"), c.Query("professor")
	if borrower == "" || professor == "" {
		respondErr(c, services.BadRequest("borrower and professor are required"))
		return
	}
	t, err := tc.Transactions.Return(c.Request.Context(), borrower, professor, c.QueryArray("barcodes"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionView(*t, complete))
}

// Delete soft-deletes; ?hard removes the row for good. Outstanding
// equipment is released either way.
func (tc *TransactionController) Delete(c *gin.Context) {
	hard, err := boolQuery(c, "hard")
	if err != nil {
		respondErr(c, err)
		return
	}
	code := c.Param("code")
	if hard {
		err = tc.Transactions.Delete(c.Request.Context(), code)
	} else {
		err = tc.Transactions.SoftDelete(c.Request.Context(), code)
	}
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Download includes soft-deleted transactions unless ?historical=false so
// the file can be uploaded back without losing rows.
func (tc *TransactionController) Download(c *gin.Context) {
	f, err := transactionFilter(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	if _, ok := c.GetQuery("historical"); !ok {
		f.Historical = true
	}
	ts, err := tc.Transactions.List(c.Request.Context(), f)
	if err != nil {
		respondErr(c, err)
		return
	}
	sendWorkbook(c, "transactions.xlsx", ts, excel.WriteTransactions)
}

func (tc *TransactionController) Upload(c *gin.Context) {
	upload(c, "Transactions", excel.ReadTransactions, tc.Transactions.AddOrUpdate)
}
