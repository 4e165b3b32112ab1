package routes

import (
	"context"

	"Gin_postgres_redis_borrow_admin/app"
	"Gin_postgres_redis_borrow_admin/controllers"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	if err := controllers.RegisterValidators(); err != nil {
		zap.L().Fatal("register validators", zap.Error(err))
	}
	s := controllers.GetSrv(a)
	app.BootstrapAdmin(context.Background(), a.Config, s.Accounts)

	seenMW := app.TouchLastSeen(s.Accounts, a.RDB, a.Config.SeenThrottle)
	Mount(r.Group(a.Config.APIPrefix), s, seenMW)
}

// Mount wires every endpoint onto g. extra runs after authentication on
// the protected groups.
func Mount(g *gin.RouterGroup, s *controllers.Srv, extra ...gin.HandlerFunc) {
	accountCtl := controllers.NewAccountController(s)
	studentCtl := controllers.NewStudentController(s)
	professorCtl := controllers.NewProfessorController(s)
	equipmentCtl := controllers.NewEquipmentController(s)
	yearLevelCtl := controllers.NewYearLevelController(s)
	yearSectionCtl := controllers.NewYearSectionController(s)
	txCtl := controllers.NewTransactionController(s)

	authMW := append([]gin.HandlerFunc{app.AuthRequired(s.Accounts)}, extra...)
	adminMW := append(append([]gin.HandlerFunc{}, authMW...), app.AdminOnly())

	// ------------------------------
	// 登录（公开）
	// ------------------------------
	public := g.Group("/accounts")
	{
		public.POST("/login", accountCtl.Login)
		public.POST("/refresh", accountCtl.Refresh)
		public.POST("/logout", accountCtl.Logout)
	}

	// 已登录：浏览 + 借还
	user := g.Group("", authMW...)
	{
		user.GET("/accounts/me", accountCtl.Me)

		user.GET("/students", studentCtl.List)
		user.GET("/students/:studentNumber", studentCtl.Get)
		user.GET("/professors", professorCtl.List)
		user.GET("/professors/:name", professorCtl.Get)
		user.GET("/equipments", equipmentCtl.List)
		user.GET("/equipments/:code", equipmentCtl.Get)
		user.GET("/equipments/barcode/:barcode", equipmentCtl.GetByBarcode)
		user.GET("/year-levels", yearLevelCtl.List)
		user.GET("/year-levels/:yearNumber", yearLevelCtl.Get)
		user.GET("/year-sections", yearSectionCtl.List)
		user.GET("/year-sections/:sectionName", yearSectionCtl.Get)

		user.GET("/transactions", txCtl.List)
		user.GET("/transactions/:code", txCtl.Get)
		user.POST("/transactions", txCtl.Create)
		user.PUT("/transactions/return", txCtl.Return)
	}

	// ------------------------------
	// 管理（仅管理员）
	// ------------------------------
	admin := g.Group("", adminMW...)
	{
		admin.POST("/accounts/register", accountCtl.Register)
		admin.GET("/accounts", accountCtl.List)
		admin.GET("/accounts/download", accountCtl.Download)
		admin.POST("/accounts/upload", accountCtl.Upload)
		admin.GET("/accounts/:username", accountCtl.Get)
		admin.POST("/accounts", accountCtl.Create)
		admin.PUT("/accounts/:username", accountCtl.Update)
		admin.DELETE("/accounts/:username", accountCtl.Delete)

		admin.GET("/students/download", studentCtl.Download)
		admin.POST("/students/upload", studentCtl.Upload)
		admin.POST("/students", studentCtl.Create)
		admin.PUT("/students/:studentNumber", studentCtl.Update)
		admin.DELETE("/students/:studentNumber", studentCtl.Delete)

		admin.GET("/professors/download", professorCtl.Download)
		admin.POST("/professors/upload", professorCtl.Upload)
		admin.POST("/professors", professorCtl.Create)
		admin.PUT("/professors/:name", professorCtl.Update)
		admin.DELETE("/professors/:name", professorCtl.Delete)

		admin.GET("/equipments/download", equipmentCtl.Download)
		admin.POST("/equipments/upload", equipmentCtl.Upload)
		admin.POST("/equipments", equipmentCtl.Create)
		admin.PUT("/equipments/:code", equipmentCtl.Update)
		admin.PUT("/equipments/:code/release", equipmentCtl.Release)
		admin.DELETE("/equipments/:code", equipmentCtl.Delete)

		admin.GET("/year-levels/download", yearLevelCtl.Download)
		admin.POST("/year-levels/upload", yearLevelCtl.Upload)
		admin.POST("/year-levels", yearLevelCtl.Create)
		admin.PUT("/year-levels/:yearNumber", yearLevelCtl.Update)
		admin.DELETE("/year-levels/:yearNumber", yearLevelCtl.Delete)

		admin.GET("/year-sections/download", yearSectionCtl.Download)
		admin.POST("/year-sections/upload", yearSectionCtl.Upload)
		admin.POST("/year-sections", yearSectionCtl.Create)
		admin.PUT("/year-sections/:sectionName", yearSectionCtl.Update)
		admin.DELETE("/year-sections/:sectionName", yearSectionCtl.Delete)

		admin.GET("/transactions/download", txCtl.Download)
		admin.POST("/transactions/upload", txCtl.Upload)
		admin.PUT("/transactions", txCtl.Update)
		admin.DELETE("/transactions/:code", txCtl.Delete)
	}
}
