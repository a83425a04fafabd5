package router

import (
	"github.com/mwendwaroy-Angoo/inventory-app/internal/config"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/handler"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and the API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db),
	)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(db))
	protected.POST("/profile/password", handler.ChangePassword(db))

	dashboardHandler := handler.NewDashboardHandler(db)
	protected.GET("/dashboard", dashboardHandler.Overview)

	storeHandler := handler.NewStoreHandler(db)
	protected.GET("/stores", storeHandler.ListStores)
	protected.POST("/stores", storeHandler.CreateStore)
	protected.POST("/stores/:id/assign", storeHandler.AssignItems)

	itemHandler := handler.NewItemHandler(db)
	protected.GET("/items", itemHandler.ListItems)
	protected.POST("/items", itemHandler.CreateItem)
	protected.GET("/items/:id", itemHandler.GetItem)
	protected.PUT("/items/:id", itemHandler.UpdateItem)

	txnHandler := handler.NewTransactionHandler(db)
	protected.POST("/transactions", txnHandler.CreateTransaction)
	protected.GET("/transactions", txnHandler.ListTransactions)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	importHandler := handler.NewImportHandler(db, cfg.Import)
	protected.POST("/import", importHandler.Upload)

	logHandler := handler.NewLogHandler(db)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}
