// cmd/tools/create-admin/main.go

// Binary create-admin seeds a dashboard account with a bcrypt-hashed
// password. Intended for bootstrapping a fresh deployment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"churnshield/internal/common/auth"
	"churnshield/internal/common/config"
	"churnshield/internal/common/database"
	"churnshield/internal/store"
)

func main() {
	username := flag.String("username", "admin", "account username")
	password := flag.String("password", "", "account password (required)")
	fullName := flag.String("full-name", "Admin User", "display name")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "usage: create-admin -username <name> -password <secret> [-full-name <name>]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pg.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres unreachable: %v\n", err)
		os.Exit(1)
	}

	users := store.NewUserStore(pg.DB)

	exists, err := users.Exists(ctx, *username)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to check username: %v\n", err)
		os.Exit(1)
	}
	if exists {
		fmt.Fprintf(os.Stderr, "user %q already exists\n", *username)
		os.Exit(1)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	if err := users.Create(ctx, *username, hash, *fullName); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created user %q\n", *username)
}
