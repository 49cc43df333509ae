// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"stockbook/internal/core/actor"
	"stockbook/internal/core/apperror"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/auth"
	"stockbook/internal/domain/billing/purchasebill"
	"stockbook/internal/domain/catalogs/client"
	"stockbook/internal/domain/catalogs/item"
	"stockbook/internal/domain/catalogs/supplier"
	"stockbook/internal/domain/finance/expense"
	"stockbook/internal/domain/ledger"
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
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	num := numerator.New(pool)

	userRepo := auth_repo.NewUserRepo(txManager)
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("seed-only"))
	authService := auth.NewService(userRepo, txManager, jwtService, auth.DefaultServiceConfig())

	email := getEnv("SEED_EMAIL", "owner@example.com")
	password := getEnv("SEED_PASSWORD", "Owner123!")

	user, err := authService.Register(ctx, auth.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     "Demo Owner",
	})
	if err != nil {
		appErr, ok := apperror.AsAppError(err)
		if !ok || appErr.Code != apperror.CodeConflict {
			log.Fatalw("failed to create demo user", "error", err)
		}
		log.Infow("demo user already exists", "email", email)
		return
	}
	log.Infow("demo user created", "email", email, "id", user.ID)

	if os.Getenv("SEED_DEMO_DATA") != "true" {
		log.Info("seeding completed")
		return
	}

	// The rest of the data belongs to the demo user.
	ctx = actor.WithActor(ctx, &actor.Actor{ID: user.ID, Email: user.Email, Name: user.Name})

	itemService := item.NewService(catalog_repo.NewItemRepo(txManager), txManager, num)
	clientService := client.NewService(catalog_repo.NewClientRepo(txManager), txManager, num)
	supplierService := supplier.NewService(catalog_repo.NewSupplierRepo(txManager), txManager, num)
	ledgerService := ledger.NewService(ledger_repo.NewLotRepo(txManager), txManager)
	expenseService := expense.NewService(finance_repo.NewExpenseRepo(txManager), txManager)

	itemRepo := catalog_repo.NewItemRepo(txManager)
	purchaseService := purchasebill.NewService(
		billing_repo.NewPurchaseBillRepo(txManager),
		ledgerService, expenseService, itemRepo, num, txManager, nil)

	sup := supplier.NewSupplier(user.ID, "Acme Wholesale")
	sup.Code = "SUP-001"
	if err := supplierService.Create(ctx, sup); err != nil {
		log.Fatalw("failed to seed supplier", "error", err)
	}

	cl := client.NewClient(user.ID, "Corner Shop")
	cl.Code = "CLI-001"
	if err := clientService.Create(ctx, cl); err != nil {
		log.Fatalw("failed to seed client", "error", err)
	}

	demoItems := []struct {
		sku, name string
		cost      string
		sell      string
	}{
		{"ITM-001", "Green Tea 100g", "2.10", "3.99"},
		{"ITM-002", "Black Tea 100g", "1.95", "3.49"},
		{"ITM-003", "Honey 250g", "4.50", "7.99"},
	}
	items := make([]*item.Item, 0, len(demoItems))
	for _, d := range demoItems {
		it := item.NewItem(user.ID, d.name)
		it.SKU = d.sku
		it.CostPrice = types.MustMoney(d.cost)
		it.SellingPrice = types.MustMoney(d.sell)
		if err := itemService.Create(ctx, it); err != nil {
			log.Fatalw("failed to seed item", "sku", d.sku, "error", err)
		}
		items = append(items, it)
	}

	// One received purchase puts opening stock on the shelf.
	lines := make([]purchasebill.LineInput, 0, len(items))
	for _, it := range items {
		lines = append(lines, purchasebill.LineInput{
			ItemID:    it.ID,
			Quantity:  types.NewQuantityFromFloat64(50),
			UnitPrice: it.CostPrice,
		})
	}

	bill, err := purchaseService.Create(ctx, purchasebill.BillInput{
		SupplierID: &sup.ID,
		BillDate:   time.Now().UTC(),
		Status:     purchasebill.StatusReceived,
		Lines:      lines,
	})
	if err != nil {
		log.Fatalw("failed to seed opening purchase", "error", err)
	}
	log.Infow("opening stock created", "bill", bill.Number, "total", bill.Total)

	log.Info("seeding completed")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
