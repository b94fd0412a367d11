package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/storefront/inventory/internal/infrastructure/config"
	"github.com/storefront/inventory/internal/infrastructure/logger"
	"github.com/storefront/inventory/internal/infrastructure/migration"
	"github.com/storefront/inventory/migrations"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		dir := migrationsPath
		if dir == "" {
			dir = defaultMigrationsPath
		}
		mf, err := migration.CreateMigration(dir, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up", mf.UpPath),
			zap.String("down", mf.DownPath),
		)
		return
	case "list":
		dir := migrationsPath
		if dir == "" {
			dir = defaultMigrationsPath
		}
		names, err := migration.ListMigrations(dir)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Database.Driver != config.DriverPostgres {
		log.Fatal("Migrations target postgres; sqlite schemas are created on startup",
			zap.String("driver", cfg.Database.Driver))
	}

	m, closeDB := openMigrator(cfg.Database, migrationsPath, log)
	defer closeDB()
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	log.Info("Migration CLI started", zap.String("command", command))

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "step":
		n := requireIntArg(args, log, "Usage: migrate step <n>")
		err = m.Steps(n)
	case "goto":
		n := requireIntArg(args, log, "Usage: migrate goto <version>")
		if n < 0 {
			log.Fatal("Version cannot be negative")
		}
		err = m.GoTo(uint(n))
	case "force":
		n := requireIntArg(args, log, "Usage: migrate force <version>")
		err = m.Force(n)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil {
			log.Fatal("Failed to read version", zap.Error(verr))
		}
		log.Info("Current schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}
}

// openMigrator reads from dir when one is given and from the embedded set
// otherwise. The returned func closes any connection opened here.
func openMigrator(cfg config.DatabaseConfig, dir string, log *zap.Logger) (*migration.Migrator, func()) {
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			log.Fatal("Failed to resolve migrations path", zap.Error(err))
		}
		m, err := migration.NewFromURL(cfg.MigrationURL(), abs, log)
		if err != nil {
			log.Fatal("Failed to create migrator", zap.Error(err))
		}
		return m, func() {}
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	m, err := migration.New(db, migrations.FS, log)
	if err != nil {
		_ = db.Close()
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	return m, func() { _ = db.Close() }
}

func requireIntArg(args []string, log *zap.Logger, usage string) int {
	if len(args) < 2 {
		log.Fatal(usage)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		log.Fatal("Invalid number", zap.String("value", args[1]), zap.Error(err))
	}
	return n
}

func printUsage() {
	fmt.Println(`Usage: migrate [flags] <command> [args]

Commands:
  up                 Apply all pending migrations
  down               Revert all migrations
  step <n>           Apply n migrations (negative reverts)
  goto <version>     Migrate to a specific version
  version            Print the current schema version
  force <version>    Set the version without running migrations
  create <name> [d]  Write a new up/down pair
  list               List migration files

Flags:
  -path string       Read migrations from this directory instead of the embedded set
  -log-level string  Log level (default "info")`)
}
