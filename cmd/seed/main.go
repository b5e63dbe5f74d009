package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quickstack-pos/api/internal/config"
	"github.com/quickstack-pos/api/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type seedOptions struct {
	tenantName string
	email      string
	password   string
	fullName   string
}

func main() {
	configPath := flag.String("config", os.Getenv("POS_CONFIG_FILE"), "path to a YAML config file")
	tenant := flag.String("tenant", "", "Tenant name")
	email := flag.String("email", "", "Owner email address")
	password := flag.String("password", "", "Owner password")
	name := flag.String("name", "", "Owner full name")
	flag.Parse()

	opts := seedOptions{
		tenantName: firstNonEmpty(*tenant, os.Getenv("SEED_TENANT"), "Demo Restaurant"),
		email:      firstNonEmpty(*email, os.Getenv("SEED_EMAIL"), "owner@example.com"),
		password:   firstNonEmpty(*password, os.Getenv("SEED_PASSWORD")),
		fullName:   firstNonEmpty(*name, os.Getenv("SEED_NAME"), "Demo Owner"),
	}

	if err := run(*configPath, opts); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, opts seedOptions) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	if opts.password == "" {
		opts.password = "password123"
		log.Warn("using default owner password, change it before going live")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	// Everything or nothing.
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	s := &seeder{tx: tx, log: log}

	tenantID, created, err := s.tenant(ctx, opts.tenantName)
	if err != nil {
		return err
	}
	if !created {
		log.Info("tenant already exists, skipping", zap.String("tenant", opts.tenantName), zap.Stringer("tenant_id", tenantID))
		return nil
	}

	ownerID, err := s.owner(ctx, tenantID, opts)
	if err != nil {
		return err
	}
	branchID, err := s.floor(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := s.catalog(ctx, tenantID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Info("seed completed",
		zap.Stringer("tenant_id", tenantID),
		zap.Stringer("branch_id", branchID),
		zap.Stringer("owner_id", ownerID),
		zap.String("owner_email", opts.email),
	)
	return nil
}

type seeder struct {
	tx  pgx.Tx
	log *zap.Logger
}

// tenant returns the existing tenant by name, or creates it with a 16% tax rate.
func (s *seeder) tenant(ctx context.Context, name string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := s.tx.QueryRow(ctx, `SELECT id FROM tenants WHERE name = $1 LIMIT 1`, name).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, fmt.Errorf("check tenant: %w", err)
	}

	if err := s.tx.QueryRow(ctx,
		`INSERT INTO tenants (name, tax_rate) VALUES ($1, 0.1600) RETURNING id`, name,
	).Scan(&id); err != nil {
		return uuid.Nil, false, fmt.Errorf("insert tenant: %w", err)
	}
	s.log.Info("created tenant", zap.String("name", name), zap.Stringer("id", id))
	return id, true, nil
}

func (s *seeder) owner(ctx context.Context, tenantID uuid.UUID, opts seedOptions) (uuid.UUID, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(opts.password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	var id uuid.UUID
	if err := s.tx.QueryRow(ctx, `
		INSERT INTO users (tenant_id, email, hashed_password, full_name, role)
		VALUES ($1, $2, $3, $4, 'OWNER')
		RETURNING id`,
		tenantID, opts.email, string(hashed), opts.fullName,
	).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("insert owner: %w", err)
	}
	s.log.Info("created owner", zap.String("email", opts.email), zap.Stringer("id", id))
	return id, nil
}

// floor creates one branch with a dining area and two tables.
func (s *seeder) floor(ctx context.Context, tenantID uuid.UUID) (uuid.UUID, error) {
	var branchID, areaID uuid.UUID
	if err := s.tx.QueryRow(ctx,
		`INSERT INTO branches (tenant_id, name, address) VALUES ($1, 'Main Branch', 'Av. Reforma 1') RETURNING id`,
		tenantID,
	).Scan(&branchID); err != nil {
		return uuid.Nil, fmt.Errorf("insert branch: %w", err)
	}

	if err := s.tx.QueryRow(ctx,
		`INSERT INTO areas (tenant_id, branch_id, name) VALUES ($1, $2, 'Dining Room') RETURNING id`,
		tenantID, branchID,
	).Scan(&areaID); err != nil {
		return uuid.Nil, fmt.Errorf("insert area: %w", err)
	}

	for _, number := range []string{"1", "2"} {
		if _, err := s.tx.Exec(ctx,
			`INSERT INTO restaurant_tables (tenant_id, area_id, number, capacity) VALUES ($1, $2, $3, 4)`,
			tenantID, areaID, number,
		); err != nil {
			return uuid.Nil, fmt.Errorf("insert table %s: %w", number, err)
		}
	}
	s.log.Info("created branch", zap.Stringer("id", branchID), zap.Int("tables", 2))
	return branchID, nil
}

// catalog creates a small sellable menu: one product with a variant,
// one modifier and one combo.
func (s *seeder) catalog(ctx context.Context, tenantID uuid.UUID) error {
	var productID uuid.UUID
	if err := s.tx.QueryRow(ctx,
		`INSERT INTO products (tenant_id, name, base_price) VALUES ($1, 'Classic Burger', 100.00) RETURNING id`,
		tenantID,
	).Scan(&productID); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	if _, err := s.tx.Exec(ctx,
		`INSERT INTO product_variants (tenant_id, product_id, name, price_adjustment) VALUES ($1, $2, 'Large', 15.50)`,
		tenantID, productID,
	); err != nil {
		return fmt.Errorf("insert variant: %w", err)
	}

	if _, err := s.tx.Exec(ctx,
		`INSERT INTO modifiers (tenant_id, name, price_adjustment) VALUES ($1, 'Extra Cheese', 10.00)`,
		tenantID,
	); err != nil {
		return fmt.Errorf("insert modifier: %w", err)
	}

	if _, err := s.tx.Exec(ctx,
		`INSERT INTO combos (tenant_id, name, price) VALUES ($1, 'Burger Combo', 75.00)`,
		tenantID,
	); err != nil {
		return fmt.Errorf("insert combo: %w", err)
	}

	s.log.Info("created catalog", zap.Stringer("product_id", productID))
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
