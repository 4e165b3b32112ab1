package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"sync"
	"testing"
	"time"

	"Gin_postgres_redis_borrow_admin/app"
	"Gin_postgres_redis_borrow_admin/controllers"
	"Gin_postgres_redis_borrow_admin/db"
	"Gin_postgres_redis_borrow_admin/excel"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const prefix = "/api/v1"

type mailbox struct {
	mu   sync.Mutex
	sent map[string]string
}

func (m *mailbox) SendPassword(_ context.Context, _, username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[username] = password
	return nil
}

func (m *mailbox) password(username string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[username]
}

type server struct {
	t     *testing.T
	r     *gin.Engine
	mail  *mailbox
	admin string // access token
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, controllers.RegisterValidators())

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

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := app.Config{JWTSecret: "test-secret", AccessTTL: time.Hour, RefreshTTL: time.Hour}
	mail := &mailbox{sent: map[string]string{}}
	s := controllers.NewSrv(db.NewRepo(conn), rdb, cfg, mail)
	require.NoError(t, s.Accounts.EnsureAdmin(context.Background(), "admin", "admin-password"))

	r := gin.New()
	Mount(r.Group(prefix), s, app.TouchLastSeen(s.Accounts, rdb, time.Minute))

	srv := &server{t: t, r: r, mail: mail}
	srv.admin = srv.login("admin", "admin-password")
	return srv
}

func (s *server) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, prefix+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func (s *server) login(username, password string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/accounts/login", "", app.H{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var out controllers.LoginResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(s.t, out.AccessToken)
	return out.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// seed creates year 1, section A, one student, one professor and a
// non-duplicable projector with barcode BC-1.
func (s *server) seed() {
	s.t.Helper()
	steps := []struct {
		path string
		body any
	}{
		{"/year-levels", app.H{"yearNumber": 1}},
		{"/year-sections", app.H{"sectionName": "A"}},
		{"/students", app.H{
			"studentNumber": "2021-00001", "firstName": "Juan", "lastName": "Dela Cruz",
			"email": "juan@example.edu", "phoneNumber": "09171234567", "yearLevel": 1, "yearSection": "A",
		}},
		{"/professors", app.H{"name": "Ada Lovelace", "email": "ada@example.edu"}},
		{"/equipments", app.H{"equipmentCode": "EQ-1", "barcode": "BC-1", "name": "Projector"}},
		{"/equipments", app.H{"equipmentCode": "EQ-2", "barcode": "BC-2", "name": "HDMI cable", "isDuplicable": true}},
	}
	for _, st := range steps {
		w := s.do(http.MethodPost, st.path, s.admin, st.body)
		require.Equal(s.t, http.StatusCreated, w.Code, "%s: %s", st.path, w.Body.String())
	}
}

func borrowBody(codes ...string) app.H {
	eqs := make([]app.H, 0, len(codes))
	for _, c := range codes {
		eqs = append(eqs, app.H{"equipmentCode": c})
	}
	return app.H{
		"equipments": eqs,
		"borrower":   app.H{"studentNumber": "2021-00001"},
		"professor":  app.H{"name": "Ada Lovelace"},
		"status":     "ACCEPTED",
	}
}

func TestAuthRequired(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/accounts/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/accounts/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/accounts/me", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[controllers.AccountDTO](t, w)
	assert.Equal(t, "admin", me.Username)

	w = s.do(http.MethodPost, "/accounts/login", "", app.H{"username": "admin", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStudentLoginCarriesProfileAndIsNotAdmin(t *testing.T) {
	s := newServer(t)
	s.seed()

	password := s.mail.password("2021-00001")
	require.NotEmpty(t, password)

	w := s.do(http.MethodPost, "/accounts/login", "", app.H{"username": "2021-00001", "password": password})
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		AccountType string `json:"accountType"`
		AccessToken string `json:"accessToken"`
		Profile     struct {
			StudentNumber string `json:"studentNumber"`
			YearLevel     struct {
				YearName string `json:"yearName"`
			} `json:"yearLevel"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "STUDENT", res.AccountType)
	assert.Equal(t, "2021-00001", res.Profile.StudentNumber)
	assert.Equal(t, "First", res.Profile.YearLevel.YearName)

	w = s.do(http.MethodPost, "/equipments", res.AccessToken, app.H{"barcode": "X", "name": "X"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/equipments", res.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBindingValidation(t *testing.T) {
	s := newServer(t)
	s.seed()

	cases := []struct {
		name string
		path string
		body app.H
	}{
		{"bad student number", "/students", app.H{
			"studentNumber": "21OO1", "firstName": "A", "lastName": "B", "yearLevel": 1, "yearSection": "A",
		}},
		{"bad phone", "/students", app.H{
			"studentNumber": "2021-00002", "firstName": "A", "lastName": "B", "yearLevel": 1, "yearSection": "A",
			"phoneNumber": "12345",
		}},
		{"missing name", "/professors", app.H{"email": "x@example.edu"}},
		{"bad status", "/equipments", app.H{"barcode": "B", "name": "N", "status": "BROKEN"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(http.MethodPost, tc.path, s.admin, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	w := s.do(http.MethodPost, "/students", s.admin, app.H{
		"studentNumber": "2021-00001", "firstName": "A", "lastName": "B", "yearLevel": 1, "yearSection": "A",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "taken student number")
}

func TestBorrowAndReturnOverHTTP(t *testing.T) {
	s := newServer(t)
	s.seed()

	w := s.do(http.MethodPost, "/transactions?complete", s.admin, borrowBody("EQ-1", "EQ-2"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	full := decode[controllers.TransactionDTO](t, w)
	assert.Equal(t, "PENDING", string(full.Status))
	require.Len(t, full.Equipments, 1)
	assert.True(t, full.Equipments[0].IsBorrowed)
	assert.Len(t, full.EquipmentsHist, 2)
	require.NotNil(t, full.Borrower)
	assert.Equal(t, "2021-00001", full.Borrower.StudentNumber)

	w = s.do(http.MethodPost, "/transactions", s.admin, borrowBody("EQ-1"))
	assert.Equal(t, http.StatusBadRequest, w.Code, "projector is already out")

	w = s.do(http.MethodGet, "/transactions/"+full.TxCode, s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[controllers.TransactionSummaryDTO](t, w)
	assert.Equal(t, []string{"EQ-1"}, summary.Equipments)
	assert.False(t, summary.Returned)

	q := url.Values{"borrower": {"2021-00001"}, "professor": {"ada lovelace"}, "barcodes": {"BC-1"}}
	w = s.do(http.MethodPut, "/transactions/return?"+q.Encode(), s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary = decode[controllers.TransactionSummaryDTO](t, w)
	assert.True(t, summary.Returned)
	assert.NotNil(t, summary.ReturnedAt)

	w = s.do(http.MethodGet, "/transactions?returned=true", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]controllers.TransactionSummaryDTO](t, w), 1)

	w = s.do(http.MethodGet, "/transactions?returned=false", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]controllers.TransactionSummaryDTO](t, w))

	w = s.do(http.MethodGet, "/equipments/EQ-1", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[controllers.EquipmentDTO](t, w).IsBorrowed)
}

func TestTransactionErrors(t *testing.T) {
	s := newServer(t)
	s.seed()

	w := s.do(http.MethodGet, "/transactions/missing", s.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/transactions", s.admin, borrowBody("EQ-404"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/transactions?fromDate=yesterday", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/transactions/return?borrower=2021-00001", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/transactions", s.admin, borrowBody("EQ-1"))
	require.Equal(t, http.StatusCreated, w.Code)
	code := decode[controllers.TransactionSummaryDTO](t, w).TxCode

	w = s.do(http.MethodDelete, "/transactions/"+code, s.admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.do(http.MethodDelete, "/transactions/"+code, s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "soft delete is not idempotent")

	w = s.do(http.MethodGet, "/equipments/EQ-1", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[controllers.EquipmentDTO](t, w).IsBorrowed, "soft delete releases equipment")
}

func TestUpdateTransactionByCode(t *testing.T) {
	s := newServer(t)
	s.seed()

	w := s.do(http.MethodPost, "/transactions", s.admin, borrowBody("EQ-1"))
	require.Equal(t, http.StatusCreated, w.Code)
	code := decode[controllers.TransactionSummaryDTO](t, w).TxCode

	w = s.do(http.MethodPut, "/transactions", s.admin, app.H{"status": "ACCEPTED"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "code is required")

	w = s.do(http.MethodPut, "/transactions?code="+code, s.admin, app.H{"status": "ACCEPTED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[controllers.TransactionSummaryDTO](t, w)
	assert.Equal(t, "ACCEPTED", string(got.Status))
	assert.Equal(t, []string{"EQ-1"}, got.Equipments)
}

func TestReleaseEquipmentDroppedByUpdate(t *testing.T) {
	s := newServer(t)
	s.seed()
	w := s.do(http.MethodPost, "/equipments", s.admin, app.H{"equipmentCode": "EQ-3", "barcode": "BC-3", "name": "Speaker"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/transactions", s.admin, borrowBody("EQ-1"))
	require.Equal(t, http.StatusCreated, w.Code)
	code := decode[controllers.TransactionSummaryDTO](t, w).TxCode

	w = s.do(http.MethodPut, "/transactions?code="+code, s.admin, app.H{"equipments": []app.H{{"equipmentCode": "EQ-1"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code, "EQ-1 is flagged as out")

	w = s.do(http.MethodPut, "/equipments/EQ-1/release", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "still outstanding")

	w = s.do(http.MethodPut, "/transactions?code="+code, s.admin, app.H{"equipments": []app.H{{"equipmentCode": "EQ-3"}}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"EQ-3"}, decode[controllers.TransactionSummaryDTO](t, w).Equipments)

	w = s.do(http.MethodPut, "/equipments/EQ-1/release", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, decode[controllers.EquipmentDTO](t, w).IsBorrowed)

	w = s.do(http.MethodPost, "/transactions", s.admin, borrowBody("EQ-1"))
	assert.Equal(t, http.StatusCreated, w.Code, "released equipment can be borrowed again")
}

func upload(t *testing.T, s *server, path, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="upload.xlsx"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, prefix+path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.admin)
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func TestEquipmentDownloadThenUpload(t *testing.T) {
	s := newServer(t)
	s.seed()

	w := s.do(http.MethodGet, "/equipments/download", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "equipments.xlsx")
	workbook := w.Body.Bytes()

	w = upload(t, s, "/equipments/upload?overwrite=true", excel.ContentType, workbook)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]int{"Equipments Affected": 0}, decode[map[string]int](t, w))

	w = upload(t, s, "/equipments/upload", "text/plain", workbook)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, s, "/equipments/upload", excel.ContentType, []byte("not a workbook"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "zip")
}

func TestTransactionDownloadThenUpload(t *testing.T) {
	s := newServer(t)
	s.seed()

	w := s.do(http.MethodPost, "/transactions", s.admin, borrowBody("EQ-1", "EQ-2"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/transactions/download", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "transactions.xlsx")

	w = upload(t, s, "/transactions/upload?overwrite=true", excel.ContentType, w.Body.Bytes())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]int{"Transactions Affected": 0}, decode[map[string]int](t, w))
}
