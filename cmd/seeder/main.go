// cmd/seeder/main.go
package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/nishadadilshan/customer-service/internal/config"
	"github.com/nishadadilshan/customer-service/internal/db"
	"github.com/nishadadilshan/customer-service/internal/logger"
)

// Creates the customers table and runs each SQL file named on the command line.
//
//	go run ./cmd/seeder seed/customers.sql
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	conn, err := db.Open(cfg.DB, logr)
	if err != nil {
		logr.Fatal("failed to open database", zap.Error(err))
	}
	defer conn.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, conn, db.CustomerSchema); err != nil {
		logr.Fatal("failed to apply schema", zap.Error(err))
	}

	for _, file := range os.Args[1:] {
		if err := db.ExecFile(ctx, conn, file); err != nil {
			logr.Fatal("failed to seed", zap.String("file", file), zap.Error(err))
		}
		logr.Info("seeded", zap.String("file", file))
	}

	logr.Info("database seeding completed")
}
