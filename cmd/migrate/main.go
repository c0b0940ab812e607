package main

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/sports-complex/internal/config"
	"github.com/iliyamo/sports-complex/internal/database"
)

func main() {
	cfg := config.Load()
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}
