package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ikkim/kicks-storefront/config"
	"github.com/ikkim/kicks-storefront/internal/cart"
	"github.com/ikkim/kicks-storefront/internal/sheet"
	"github.com/ikkim/kicks-storefront/internal/storage"
	"github.com/ikkim/kicks-storefront/pkg/logger"
	"github.com/ikkim/kicks-storefront/pkg/util"
)

// seed imports the line items of a cart spreadsheet into a new shopper scope
// and prints the scope token to use as the kicks_scope cookie.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path> [-y]")
	}

	filePath := os.Args[1]
	assumeYes := len(os.Args) > 2 && os.Args[2] == "-y"

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: "warn", Format: "console"})

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	result, err := sheet.ReadCart(f)
	f.Close()
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Line items to import: %d (skipped rows: %d)\n", len(result.Items), result.Skipped)
	if len(result.Items) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	if !assumeYes {
		fmt.Printf("Import into %s storage? (yes/no): ", cfg.Storage.Driver)
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	ctx := context.Background()
	backend, closeStorage, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open cart storage:", err)
	}
	defer closeStorage()

	persister := cart.NewPersister(backend, cfg.Cart.WriteTimeout)
	registry := cart.NewRegistry(backend, persister, cfg.Cart.StorageKey, cart.Options{
		FallbackPrice: cfg.Cart.FallbackPrice,
		LoadTimeout:   cfg.Cart.LoadTimeout,
	})

	scopeID := util.NewScopeID()
	sess := registry.Open(ctx, scopeID)
	st := sess.Store.Replace(result.Items)

	// flush the write before printing the token
	persister.Close()
	if stats := persister.Stats(); stats.Failed > 0 {
		log.Fatalf("Failed to persist the cart (%d failed writes)", stats.Failed)
	}

	token, err := util.GenerateScopeToken(scopeID, cfg.Scope.Secret, cfg.Scope.MaxAge)
	if err != nil {
		log.Fatal("Failed to issue scope token:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Scope:  %s\n", scopeID)
	fmt.Printf("Items:  %d lines, %d units, total %s\n", len(st.Items), st.Count(), util.FormatPrice(st.Total(sess.Store.FallbackPrice())))
	fmt.Printf("Cookie: %s=%s\n", cfg.Scope.CookieName, token)
}
