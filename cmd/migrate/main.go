// Command migrate inspects and changes the database schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"sharedepot/internal/config"
	"sharedepot/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: migrate <up|status|verify|down> [version]")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx := context.Background()
	switch cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0))); cmd {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return err
		}
		log.Println("migrations applied")
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return err
		}
		log.Printf("mode=%s env=%s migrate=%v automigrate=%v applied=%v\n",
			status.Mode, status.Environment, status.WillMigrate, status.WillRunAutoMigrate, status.AppliedVersions)
		if len(status.Pending) == 0 {
			log.Println("no pending migrations")
		}
		for _, m := range status.Pending {
			log.Printf("pending: %s\n", m)
		}
	case "verify":
		if err := database.VerifySchema(db.WithContext(ctx)); err != nil {
			return err
		}
		log.Println("schema complete")
	case "down":
		if flag.NArg() < 2 {
			return usage()
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return err
		}
		log.Printf("migration %d rolled back\n", version)
	default:
		return usage()
	}
	return nil
}
