// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockbook/internal/domain/auth"
	"stockbook/internal/domain/billing/purchasebill"
	"stockbook/internal/domain/billing/salesbill"
	"stockbook/internal/domain/catalogs/client"
	"stockbook/internal/domain/catalogs/item"
	"stockbook/internal/domain/catalogs/supplier"
	"stockbook/internal/domain/finance/expense"
	"stockbook/internal/domain/ledger"
	"stockbook/internal/infrastructure/http/v1/handlers"
	"stockbook/internal/infrastructure/http/v1/middleware"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/pkg/logger"
)

// RouterConfig holds the services the router exposes.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	// TokenValidator checks bearer tokens on protected routes.
	TokenValidator middleware.TokenValidator

	AuthService     *auth.Service
	AuditService    *postgres.AuditService
	ItemService     *item.Service
	ClientService   *client.Service
	SupplierService *supplier.Service
	LedgerService   *ledger.Service
	SalesService    *salesbill.Service
	PurchaseService *purchasebill.Service
	ExpenseService  *expense.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints, no auth
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	api := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.TokenValidator))

		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		auditHandler := handlers.NewAuditHandler(base, cfg.AuditService)
		protected.GET("/audit/:entityType/:id", auditHandler.History)

		registerCatalogRoutes(protected, base, cfg)
		registerLedgerRoutes(protected, base, cfg)
		registerBillingRoutes(protected, base, cfg)
		registerFinanceRoutes(protected, base, cfg)
	}

	return router
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	itemHandler := handlers.NewItemHandler(base, cfg.ItemService)
	items := rg.Group("/items")
	{
		items.GET("", itemHandler.List)
		items.GET("/low-stock", itemHandler.LowStock)
		items.GET("/:id", itemHandler.Get)
		items.POST("", itemHandler.Create)
		items.PUT("/:id", itemHandler.Update)
		items.DELETE("/:id", itemHandler.Delete)
	}

	clientHandler := handlers.NewClientHandler(base, cfg.ClientService)
	clients := rg.Group("/clients")
	{
		clients.GET("", clientHandler.List)
		clients.GET("/:id", clientHandler.Get)
		clients.POST("", clientHandler.Create)
		clients.PUT("/:id", clientHandler.Update)
		clients.DELETE("/:id", clientHandler.Delete)
	}

	supplierHandler := handlers.NewSupplierHandler(base, cfg.SupplierService)
	suppliers := rg.Group("/suppliers")
	{
		suppliers.GET("", supplierHandler.List)
		suppliers.GET("/:id", supplierHandler.Get)
		suppliers.POST("", supplierHandler.Create)
		suppliers.PUT("/:id", supplierHandler.Update)
		suppliers.DELETE("/:id", supplierHandler.Delete)
	}
}

func registerLedgerRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	lotHandler := handlers.NewLotHandler(base, cfg.LedgerService)
	lots := rg.Group("/lots")
	{
		lots.GET("", lotHandler.List)
		lots.GET("/:id", lotHandler.Get)
		lots.POST("", lotHandler.Create)
		lots.DELETE("/:id", lotHandler.Delete)
	}
}

func registerBillingRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	salesHandler := handlers.NewSalesBillHandler(base, cfg.SalesService)
	sales := rg.Group("/sales-bills")
	{
		sales.GET("", salesHandler.List)
		sales.GET("/:id", salesHandler.Get)
		sales.POST("", salesHandler.Create)
		sales.PUT("/:id", salesHandler.Update)
		sales.DELETE("/:id", salesHandler.Delete)
		sales.POST("/:id/status", salesHandler.SetStatus)
	}

	purchaseHandler := handlers.NewPurchaseBillHandler(base, cfg.PurchaseService)
	purchases := rg.Group("/purchase-bills")
	{
		purchases.GET("", purchaseHandler.List)
		purchases.GET("/:id", purchaseHandler.Get)
		purchases.POST("", purchaseHandler.Create)
		purchases.PUT("/:id", purchaseHandler.Update)
		purchases.DELETE("/:id", purchaseHandler.Delete)
		purchases.POST("/:id/status", purchaseHandler.SetStatus)
	}
}

func registerFinanceRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	expenseHandler := handlers.NewExpenseHandler(base, cfg.ExpenseService)
	expenses := rg.Group("/expenses")
	{
		expenses.GET("", expenseHandler.List)
		expenses.GET("/:id", expenseHandler.Get)
		expenses.POST("", expenseHandler.Create)
		expenses.PUT("/:id", expenseHandler.Update)
		expenses.DELETE("/:id", expenseHandler.Delete)
	}
}
