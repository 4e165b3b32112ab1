package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"Gin_postgres_redis_borrow_admin/app"
	"Gin_postgres_redis_borrow_admin/db"
	"Gin_postgres_redis_borrow_admin/services"
	"Gin_postgres_redis_borrow_admin/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Srv bundles the services every controller works against.
type Srv struct {
	Accounts     *services.AccountService
	Students     *services.StudentService
	Professors   *services.ProfessorService
	Equipments   *services.EquipmentService
	YearLevels   *services.YearLevelService
	YearSections *services.YearSectionService
	Transactions *services.TransactionService
}

func GetSrv(a *app.App) *Srv {
	mailer := services.NewSMTPMailer(services.LoadSMTPConf())
	return NewSrv(db.NewRepo(a.DB), a.RDB, a.Config, mailer)
}

func NewSrv(store db.Store, rdb *redis.Client, cfg app.Config, mailer services.Mailer) *Srv {
	tokens := services.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTTL)
	refresh := session.NewRefreshStore(rdb, cfg.RefreshTTL)
	accounts := services.NewAccountService(store, tokens, refresh, mailer)
	return &Srv{
		Accounts:     accounts,
		Students:     services.NewStudentService(store, accounts, mailer),
		Professors:   services.NewProfessorService(store, accounts, mailer),
		Equipments:   services.NewEquipmentService(store),
		YearLevels:   services.NewYearLevelService(store),
		YearSections: services.NewYearSectionService(store),
		Transactions: services.NewTransactionService(store),
	}
}

// --- helpers ---

// respondErr answers with the status a service error carries; anything the
// services did not classify is logged and hidden behind a 500.
func respondErr(c *gin.Context, err error) {
	var se *services.Error
	if errors.As(err, &se) {
		c.JSON(se.Status, app.H{"error": se.Message})
		return
	}
	zap.L().Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
}

// boolQuery treats a bare flag (?complete) as true.
func boolQuery(c *gin.Context, key string) (bool, error) {
	v, ok := c.GetQuery(key)
	if !ok {
		return false, nil
	}
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, services.BadRequest("%s must be true or false", key)
	}
	return b, nil
}

func optBoolQuery(c *gin.Context, key string) (*bool, error) {
	if _, ok := c.GetQuery(key); !ok {
		return nil, nil
	}
	b, err := boolQuery(c, key)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// dateLayouts accepts RFC 3339 and zone-less ISO date-times (read as UTC).
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

func timeQuery(c *gin.Context, key string) (*time.Time, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, services.BadRequest("%s must be an ISO-8601 date-time", key)
}
