// Command migrate applies the SQL migrations under db/migrations.
//
// It wraps the goose CLI so the schema workflow stays a single command:
//
//	migrate up      apply all pending migrations
//	migrate down    roll back the most recent migration
//	migrate status  print migration state
//
// DATABASE_URL must point at the target database.
package main

import (
	"fmt"
	"os"
	"os/exec"
)

func main() {
	action := "up"
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	switch action {
	case "up", "down", "status", "version":
	default:
		fmt.Printf("Usage: migrate [up|down|status|version]\n")
		os.Exit(1)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Println("DATABASE_URL is required")
		os.Exit(1)
	}

	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "db/migrations"
	}

	cmd := exec.Command("goose", "-dir", dir, "postgres", dsn, action)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Printf("migrate %s failed: %v\n", action, err)
		os.Exit(1)
	}
}
