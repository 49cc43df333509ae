// Package main is the entry point for the stockbook API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockbook/internal/core/policy"
	"stockbook/internal/domain/auth"
	"stockbook/internal/domain/billing/purchasebill"
	"stockbook/internal/domain/billing/salesbill"
	"stockbook/internal/domain/catalogs/client"
	"stockbook/internal/domain/catalogs/item"
	"stockbook/internal/domain/catalogs/supplier"
	"stockbook/internal/domain/finance/expense"
	"stockbook/internal/domain/ledger"
	v1 "stockbook/internal/infrastructure/http/v1"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/internal/infrastructure/storage/postgres/auth_repo"
	"stockbook/internal/infrastructure/storage/postgres/billing_repo"
	"stockbook/internal/infrastructure/storage/postgres/catalog_repo"
	"stockbook/internal/infrastructure/storage/postgres/finance_repo"
	"stockbook/internal/infrastructure/storage/postgres/ledger_repo"
	"stockbook/pkg/logger"
	"stockbook/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting stockbook server")

	// --- Database connection ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)
	num := numerator.New(pool)

	// --- Bill guard rules ---
	guard, err := loadGuard()
	if err != nil {
		log.Fatalw("failed to compile policy rules", "error", err)
	}

	// --- Repositories ---
	userRepo := auth_repo.NewUserRepo(txManager)
	itemRepo := catalog_repo.NewItemRepo(txManager)
	clientRepo := catalog_repo.NewClientRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	lotRepo := ledger_repo.NewLotRepo(txManager)
	salesRepo := billing_repo.NewSalesBillRepo(txManager)
	purchaseRepo := billing_repo.NewPurchaseBillRepo(txManager)
	expenseRepo := finance_repo.NewExpenseRepo(txManager)

	// --- Services ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))
	authService := auth.NewService(userRepo, txManager, jwtService, auth.DefaultServiceConfig())

	itemService := item.NewService(itemRepo, txManager, num)
	clientService := client.NewService(clientRepo, txManager, num)
	supplierService := supplier.NewService(supplierRepo, txManager, num)

	ledgerService := ledger.NewService(lotRepo, txManager)
	expenseService := expense.NewService(expenseRepo, txManager)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}
	salesService := salesbill.NewService(salesRepo, ledgerService, num, txManager, guard)
	purchaseService := purchasebill.NewService(
		purchaseRepo, ledgerService, expenseService, itemRepo, num, txManager, guard)

	registerAuditHooks(auditService, itemService, clientService, supplierService)
	registerBillAuditHooks(auditService, salesService, purchaseService)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		TokenValidator:  jwtService,
		AuthService:     authService,
		AuditService:    auditService,
		ItemService:     itemService,
		ClientService:   clientService,
		SupplierService: supplierService,
		LedgerService:   ledgerService,
		SalesService:    salesService,
		PurchaseService: purchaseService,
		ExpenseService:  expenseService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	statsInterval := 5 * time.Minute
	go func() {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for range ticker.C {
			postgres.LogPoolStats(ctx, pool.Pool)
		}
	}()

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// registerAuditHooks records catalog changes in the audit log. Entries
// are written as the operation is attempted, after validation passes.
func registerAuditHooks(
	audit *postgres.AuditService,
	items *item.Service,
	clients *client.Service,
	suppliers *supplier.Service,
) {
	items.Hooks().OnBeforeCreate(func(ctx context.Context, it *item.Item) error {
		return audit.LogChange(ctx, "item", it.ID, postgres.AuditActionCreate, postgres.StructToMap(it))
	})
	items.Hooks().OnBeforeUpdate(func(ctx context.Context, it *item.Item) error {
		// The stored row still holds the previous state at this point.
		old, err := items.GetByID(ctx, it.ID)
		if err != nil {
			return err
		}
		changes := postgres.Diff(postgres.StructToMap(old), postgres.StructToMap(it))
		return audit.LogChange(ctx, "item", it.ID, postgres.AuditActionUpdate, changes)
	})
	items.Hooks().OnBeforeDelete(func(ctx context.Context, it *item.Item) error {
		return audit.LogChange(ctx, "item", it.ID, postgres.AuditActionDelete, nil)
	})

	clients.Hooks().OnBeforeCreate(func(ctx context.Context, cl *client.Client) error {
		return audit.LogChange(ctx, "client", cl.ID, postgres.AuditActionCreate, postgres.StructToMap(cl))
	})
	clients.Hooks().OnBeforeUpdate(func(ctx context.Context, cl *client.Client) error {
		old, err := clients.GetByID(ctx, cl.ID)
		if err != nil {
			return err
		}
		changes := postgres.Diff(postgres.StructToMap(old), postgres.StructToMap(cl))
		return audit.LogChange(ctx, "client", cl.ID, postgres.AuditActionUpdate, changes)
	})
	clients.Hooks().OnBeforeDelete(func(ctx context.Context, cl *client.Client) error {
		return audit.LogChange(ctx, "client", cl.ID, postgres.AuditActionDelete, nil)
	})

	suppliers.Hooks().OnBeforeCreate(func(ctx context.Context, sup *supplier.Supplier) error {
		return audit.LogChange(ctx, "supplier", sup.ID, postgres.AuditActionCreate, postgres.StructToMap(sup))
	})
	suppliers.Hooks().OnBeforeUpdate(func(ctx context.Context, sup *supplier.Supplier) error {
		old, err := suppliers.GetByID(ctx, sup.ID)
		if err != nil {
			return err
		}
		changes := postgres.Diff(postgres.StructToMap(old), postgres.StructToMap(sup))
		return audit.LogChange(ctx, "supplier", sup.ID, postgres.AuditActionUpdate, changes)
	})
	suppliers.Hooks().OnBeforeDelete(func(ctx context.Context, sup *supplier.Supplier) error {
		return audit.LogChange(ctx, "supplier", sup.ID, postgres.AuditActionDelete, nil)
	})
}

// registerBillAuditHooks records bill changes in the audit log. Bill hooks
// run inside the bill transaction, so an entry exists only when the
// operation commits.
func registerBillAuditHooks(
	audit *postgres.AuditService,
	sales *salesbill.Service,
	purchases *purchasebill.Service,
) {
	sales.Hooks().OnBeforeCreate(func(ctx context.Context, b *salesbill.SalesBill) error {
		return audit.LogChange(ctx, "sales_bill", b.ID, postgres.AuditActionCreate, postgres.StructToMap(b))
	})
	sales.Hooks().OnBeforeUpdate(func(ctx context.Context, b *salesbill.SalesBill) error {
		// The stored row still holds the previous state at this point.
		old, err := sales.Get(ctx, b.ID)
		if err != nil {
			return err
		}
		changes := postgres.Diff(postgres.StructToMap(old), postgres.StructToMap(b))
		return audit.LogChange(ctx, "sales_bill", b.ID, postgres.AuditActionUpdate, changes)
	})
	sales.Hooks().OnBeforeDelete(func(ctx context.Context, b *salesbill.SalesBill) error {
		return audit.LogChange(ctx, "sales_bill", b.ID, postgres.AuditActionDelete, nil)
	})
	sales.Hooks().OnStatusChange(func(ctx context.Context, b *salesbill.SalesBill) error {
		return audit.LogChange(ctx, "sales_bill", b.ID, postgres.AuditActionStatus,
			map[string]any{"status": b.Status})
	})

	purchases.Hooks().OnBeforeCreate(func(ctx context.Context, b *purchasebill.PurchaseBill) error {
		return audit.LogChange(ctx, "purchase_bill", b.ID, postgres.AuditActionCreate, postgres.StructToMap(b))
	})
	purchases.Hooks().OnBeforeUpdate(func(ctx context.Context, b *purchasebill.PurchaseBill) error {
		old, err := purchases.Get(ctx, b.ID)
		if err != nil {
			return err
		}
		changes := postgres.Diff(postgres.StructToMap(old), postgres.StructToMap(b))
		return audit.LogChange(ctx, "purchase_bill", b.ID, postgres.AuditActionUpdate, changes)
	})
	purchases.Hooks().OnBeforeDelete(func(ctx context.Context, b *purchasebill.PurchaseBill) error {
		return audit.LogChange(ctx, "purchase_bill", b.ID, postgres.AuditActionDelete, nil)
	})
	purchases.Hooks().OnStatusChange(func(ctx context.Context, b *purchasebill.PurchaseBill) error {
		return audit.LogChange(ctx, "purchase_bill", b.ID, postgres.AuditActionStatus,
			map[string]any{"status": b.Status})
	})
}

// loadGuard reads bill guard rules from POLICY_RULES, a JSON array of
// {"name": ..., "expression": ...}. An empty value means no rules.
func loadGuard() (*policy.Guard, error) {
	raw := os.Getenv("POLICY_RULES")
	if raw == "" {
		return nil, nil
	}

	var defs []struct {
		Name       string `json:"name"`
		Expression string `json:"expression"`
	}
	if err := json.Unmarshal([]byte(raw), &defs); err != nil {
		return nil, fmt.Errorf("parse POLICY_RULES: %w", err)
	}

	rules := make([]policy.Rule, 0, len(defs))
	for _, d := range defs {
		rules = append(rules, policy.Rule{Name: d.Name, Expression: d.Expression})
	}
	return policy.NewGuard(rules)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
