package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cascadeconnect/internal/infrastructure/postgres"
	"cascadeconnect/internal/shared/config"
)

const usage = `CascadeConnect Admin CLI - Management commands for the CascadeConnect API

Usage:
  admin <command> [options]

Commands:
  migrate      Apply database schema migrations and exit
  prune-push   Remove push subscriptions that have not been used recently

Examples:
  # Apply schema migrations
  admin migrate

  # Remove subscriptions unused for 90 days (the default)
  admin prune-push

  # Remove subscriptions unused for 30 days
  admin prune-push --older-than=720h
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "migrate":
		runMigrate(os.Args[2:])
	case "prune-push":
		runPrunePush(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func connect() (*postgres.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Connected to database")
	return db, nil
}

func runMigrate(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	timeoutStr := fs.String("timeout", "5m", "Timeout for the operation (e.g., 30s, 5m)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	db, err := connect()
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations applied")
}

func runPrunePush(args []string) {
	fs := flag.NewFlagSet("prune-push", flag.ExitOnError)
	olderThanStr := fs.String("older-than", "2160h", "Prune subscriptions unused for this long (e.g., 720h for 30 days)")
	timeoutStr := fs.String("timeout", "5m", "Timeout for the operation")

	fs.Usage = func() {
		fmt.Println("Usage: admin prune-push [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	olderThan, err := time.ParseDuration(*olderThanStr)
	if err != nil {
		log.Fatalf("Invalid --older-than format: %v", err)
	}
	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	db, err := connect()
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	repo := postgres.NewPushSubscriptionRepository(db)
	pruned, err := repo.PruneStale(ctx, olderThan)
	if err != nil {
		log.Fatalf("Prune failed: %v", err)
	}
	log.Printf("Pruned %d push subscriptions unused for more than %s", pruned, olderThan)
}
