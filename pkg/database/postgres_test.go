package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/wonny/ipo-scorecard/pkg/config"
)

func TestNew_RequiresURL(t *testing.T) {
	cfg := &config.Config{}

	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("Expected error without DATABASE_URL")
	}
}

func TestNew_BadURL(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{URL: "://not-a-url", MaxConns: 1}}

	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("Expected error for malformed DATABASE_URL")
	}
}

func TestHealthCheck(t *testing.T) {
	// Skip if DATABASE_URL is not set
	if os.Getenv("DATABASE_URL") == "" || testing.Short() {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}

	if !status.Healthy {
		t.Error("Expected database to be healthy")
	}

	if status.Stats.MaxConns == 0 {
		t.Error("Expected MaxConns to be greater than 0")
	}

	t.Logf("Health Status: %+v", status)
}
