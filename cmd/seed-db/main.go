package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/milsabores/checkout/internal/domain/discount"
	"github.com/milsabores/checkout/internal/storage/postgres"
)

type productJSON struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
}

type customerJSON struct {
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	BirthDate         string          `json:"birth_date,omitempty"`
	Student           bool            `json:"student"`
	RegisteredCode    string          `json:"registered_code,omitempty"`
	PermanentDiscount decimal.Decimal `json:"permanent_discount"`
}

type promotionJSON struct {
	Code        string          `json:"code"`
	Percent     decimal.Decimal `json:"percent"`
	Description string          `json:"description"`
}

func main() {
	var (
		databaseURL string
		seedDir     string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedDir, "seed-dir", "db/seed", "directory containing seed JSON files")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedDir); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedDir string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, seedDir+"/products.json"); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedCustomers(ctx, pool, seedDir+"/customers.json"); err != nil {
		return errors.Wrap(err, "seed customers")
	}
	if err := seedPromotions(ctx, pool, seedDir+"/promotions.json"); err != nil {
		return errors.Wrap(err, "seed promotions")
	}
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, path string) error {
	var products []productJSON
	if err := readJSON(path, &products); err != nil {
		return err
	}

	const insertSQL = `INSERT INTO products (name, description, price, stock, category, image_url)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1)`

	for _, p := range products {
		if _, err := pool.Exec(ctx, insertSQL,
			p.Name, p.Description, p.Price, p.Stock, p.Category, p.ImageURL,
		); err != nil {
			return errors.Wrapf(err, "insert product %q", p.Name)
		}
	}

	slog.Info("seeded products", slog.Int("count", len(products)))
	return nil
}

func seedCustomers(ctx context.Context, pool *pgxpool.Pool, path string) error {
	var customers []customerJSON
	if err := readJSON(path, &customers); err != nil {
		return err
	}

	const insertSQL = `INSERT INTO customers (name, email, birth_date, student, registered_code, permanent_discount)
		VALUES ($1, $2, NULLIF($3, '')::date, $4, NULLIF($5, ''), $6)
		ON CONFLICT (email) DO NOTHING`

	for _, c := range customers {
		if _, err := pool.Exec(ctx, insertSQL,
			c.Name, c.Email, c.BirthDate, c.Student, c.RegisteredCode, c.PermanentDiscount,
		); err != nil {
			return errors.Wrapf(err, "insert customer %q", c.Email)
		}
	}

	slog.Info("seeded customers", slog.Int("count", len(customers)))
	return nil
}

func seedPromotions(ctx context.Context, pool *pgxpool.Pool, path string) error {
	var promos []promotionJSON
	if err := readJSON(path, &promos); err != nil {
		return err
	}

	repo := postgres.NewPromotionRepository(pool)
	batch := make([]discount.Promotion, len(promos))
	for i, p := range promos {
		batch[i] = discount.Promotion{
			Code:        p.Code,
			Percent:     p.Percent,
			Description: p.Description,
		}
	}
	if err := repo.UpsertBatch(ctx, batch); err != nil {
		return err
	}

	slog.Info("seeded promotions", slog.Int("count", len(promos)))
	return nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}
	return nil
}
