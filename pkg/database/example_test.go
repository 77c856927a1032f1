package database_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/wonny/aegis-panel/pkg/config"
	"github.com/wonny/aegis-panel/pkg/database"
)

// Example demonstrates connecting and applying the schema
func Example() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	status, err := db.HealthCheck(ctx)
	if err != nil {
		log.Fatalf("Health check failed: %v", err)
	}

	fmt.Printf("Database is healthy: %v\n", status.Healthy)
	fmt.Printf("Idle connections: %d\n", status.Stats.IdleConns)
}
