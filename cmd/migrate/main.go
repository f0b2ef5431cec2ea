package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/questguide/questguide-backend/internal/config"
)

func main() {
	defaultDir := os.Getenv("MIGRATIONS_PATH")
	if defaultDir == "" {
		defaultDir = "migrations"
	}

	var migrationDir string
	flag.StringVar(&migrationDir, "path", defaultDir, "Path to migration files (env MIGRATIONS_PATH)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(2)
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	m, err := migrate.New("file://"+migrationDir, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Migration failed to initialize: %v", err)
	}
	defer m.Close()

	switch args[0] {
	case "up":
		check("up", m.Up())
	case "down":
		check("down", m.Down())
	case "steps":
		n := intArg(args, "steps")
		check(fmt.Sprintf("steps %d", n), m.Steps(n))
	case "force":
		v := intArg(args, "force")
		if err := m.Force(v); err != nil {
			log.Fatalf("Force failed: %v", err)
		}
		fmt.Printf("Forced schema version to %d\n", v)
		return
	case "version":
	default:
		printUsage()
		os.Exit(2)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		fmt.Println("Schema version: none")
	case err != nil:
		log.Fatalf("Version failed: %v", err)
	default:
		fmt.Printf("Schema version: %d, dirty: %t\n", version, dirty)
	}
}

func check(op string, err error) {
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Printf("%s: schema already current\n", op)
		return
	}
	if err != nil {
		log.Fatalf("Migrate %s failed: %v", op, err)
	}
	fmt.Printf("%s: done\n", op)
}

func intArg(args []string, cmd string) int {
	if len(args) < 2 {
		log.Fatalf("%s requires a numeric argument", cmd)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		log.Fatalf("Invalid %s argument %q: %v", cmd, args[1], err)
	}
	return n
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate [-path dir] <command>")
	fmt.Fprintln(os.Stderr, "Applies the QuestGuide schema (users, tests, test_results, resources).")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  up            apply all pending migrations")
	fmt.Fprintln(os.Stderr, "  down          revert every migration")
	fmt.Fprintln(os.Stderr, "  steps <n>     apply n migrations, or revert when n is negative")
	fmt.Fprintln(os.Stderr, "  version       print the current schema version")
	fmt.Fprintln(os.Stderr, "  force <v>     set the version without running migrations")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}
