package main

import (
	"errors"
	"flag"
	"log"
	"net/url"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/config"
)

func main() {
	var dir string
	var command string

	flag.StringVar(&dir, "path", "migrations", "Directory holding the SQL migrations")
	flag.StringVar(&command, "cmd", "up", "Migration command (up, down, steps, version, force)")
	flag.Parse()

	cfg := config.LoadConfig()
	if cfg.DatabaseURL == "" {
		log.Fatal("❌ DATABASE_URL is empty")
	}

	source := "file://" + dir
	log.Printf("📂 Migration path: %s", source)
	log.Printf("💾 Database: %s", maskDatabaseURL(cfg.DatabaseURL))

	m, err := migrate.New(source, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to create migrate instance: %v", err)
	}
	defer m.Close()

	switch command {
	case "up":
		log.Println("⬆️  Running UP migrations...")
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("❌ Migration UP failed: %v", err)
		}
		log.Println("✅ Migrations UP completed!")

	case "down":
		log.Println("⬇️  Running DOWN migrations...")
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("❌ Migration DOWN failed: %v", err)
		}
		log.Println("✅ Migrations DOWN completed!")

	case "steps":
		n := intArg("steps")
		if err := m.Steps(n); err != nil {
			log.Fatalf("❌ Steps %d failed: %v", n, err)
		}
		log.Printf("✅ Applied %d step(s)", n)

	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatalf("❌ Failed to get version: %v", err)
		}
		log.Printf("📌 Current version: %d (dirty: %t)", version, dirty)

	case "force":
		v := intArg("force")
		if err := m.Force(v); err != nil {
			log.Fatalf("❌ Force failed: %v", err)
		}
		log.Printf("✅ Forced version to: %d", v)

	default:
		log.Fatalf("❌ Unknown command: %s (use: up, down, steps, version, force)", command)
	}
}

func intArg(command string) int {
	if flag.NArg() < 1 {
		log.Fatalf("❌ Please provide a number for the %s command", command)
	}
	n, err := strconv.Atoi(flag.Arg(0))
	if err != nil {
		log.Fatalf("❌ Invalid number %q: %v", flag.Arg(0), err)
	}
	return n
}

// maskDatabaseURL hides the password in the database URL for logging
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return "***"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
