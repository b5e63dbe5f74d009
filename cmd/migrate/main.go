package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/quickstack-pos/api/internal/config"
	"github.com/quickstack-pos/api/internal/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("POS_CONFIG_FILE"), "path to a YAML config file")
	dir := flag.String("dir", "migrations", "migrations directory")
	flag.Parse()

	cmd := flag.Arg(0)
	if cmd != "up" && cmd != "down" {
		fmt.Fprintln(os.Stderr, "usage: migrate [-config file] [-dir migrations] up|down")
		os.Exit(2)
	}

	if err := run(*configPath, *dir, cmd); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dir, cmd string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no migrations to apply", zap.String("direction", cmd))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", cmd, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read version: %w", err)
	}
	log.Info("migrations applied", zap.String("direction", cmd), zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
