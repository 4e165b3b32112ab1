package main

import (
	"Gin_postgres_redis_borrow_admin/app"
	"Gin_postgres_redis_borrow_admin/config"
	"Gin_postgres_redis_borrow_admin/routes"

	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	addr := ":" + application.Config.Port
	zap.L().Info("listening", zap.String("addr", addr), zap.String("prefix", application.Config.APIPrefix))
	if err := r.Run(addr); err != nil {
		zap.L().Error("server stopped", zap.Error(err))
	}
}
