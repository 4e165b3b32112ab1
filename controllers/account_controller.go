package controllers

import (
	"net/http"

	"Gin_postgres_redis_borrow_admin/app"
	"Gin_postgres_redis_borrow_admin/excel"
	"Gin_postgres_redis_borrow_admin/models"

	"github.com/gin-gonic/gin"
)

type AccountController struct {
	*Srv
	sheet[models.Account, AccountDTO]
}

func NewAccountController(s *Srv) *AccountController {
	return &AccountController{Srv: s, sheet: sheet[models.Account, AccountDTO]{
		entity:   "Accounts",
		filename: "accounts.xlsx",
		svc:      s.Accounts,
		dto:      toAccountDTO,
		write:    excel.WriteAccounts,
		read:     excel.ReadAccounts,
	}}
}

type credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (ac *AccountController) Login(c *gin.Context) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	res, err := ac.Accounts.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toLoginResponse(res))
}

// Register creates an account with a chosen password and signs it in.
func (ac *AccountController) Register(c *gin.Context) {
	var in AccountCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	if in.Password == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "password is required"})
		return
	}
	acc := in.model()
	res, err := ac.Accounts.Register(c.Request.Context(), &acc)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toLoginResponse(res))
}

func (ac *AccountController) Refresh(c *gin.Context) {
	var in refreshRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	res, err := ac.Accounts.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toLoginResponse(res))
}

func (ac *AccountController) Logout(c *gin.Context) {
	var in refreshRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	if err := ac.Accounts.Logout(c.Request.Context(), in.RefreshToken); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// Me returns the signed-in account.
func (ac *AccountController) Me(c *gin.Context) {
	acc, err := ac.Accounts.Get(c.Request.Context(), c.GetString(app.CtxUsername))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountDTO(*acc))
}

func (ac *AccountController) Get(c *gin.Context) {
	acc, err := ac.Accounts.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountDTO(*acc))
}

// Create without a password generates one and mails it.
func (ac *AccountController) Create(c *gin.Context) {
	var in AccountCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	acc := in.model()
	out, err := ac.Accounts.Create(c.Request.Context(), &acc)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAccountDTO(*out))
}

func (ac *AccountController) Update(c *gin.Context) {
	var in AccountUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	out, err := ac.Accounts.Update(c.Request.Context(), c.Param("username"), in.patch())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountDTO(*out))
}

func (ac *AccountController) Delete(c *gin.Context) {
	if err := ac.Accounts.SoftDelete(c.Request.Context(), c.Param("username")); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}
