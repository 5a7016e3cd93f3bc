package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/inventura/internal/db"
	"github.com/erazemk/inventura/internal/model"
)

// ListProducts returns the full catalog.
func ListProducts(ctx context.Context, d *db.DB) ([]model.Product, error) {
	var products []model.Product
	err := d.SelectContext(ctx, &products,
		`SELECT gtin, name, category, batch, best_before, quantity, unit
		 FROM products ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// GetProduct returns a product by GTIN, or nil if it does not exist.
func GetProduct(ctx context.Context, d *db.DB, gtin string) (*model.Product, error) {
	p := &model.Product{}
	err := d.GetContext(ctx, p,
		d.Rebind(`SELECT gtin, name, category, batch, best_before, quantity, unit
		          FROM products WHERE gtin = ?`), gtin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	return p, nil
}

// CreateProduct inserts a catalog entry. Used by the initial stock load;
// counting operations never create products.
func CreateProduct(ctx context.Context, d *db.DB, p model.Product) error {
	if p.GTIN == "" || p.Name == "" {
		return fmt.Errorf("%w: gtin and name are required", ErrValidation)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	_, err := d.ExecContext(ctx,
		d.Rebind(`INSERT INTO products (gtin, name, category, batch, best_before, quantity, unit)
		          VALUES (?, ?, ?, ?, ?, ?, ?)`),
		p.GTIN, p.Name, p.Category, p.Batch, p.BestBefore, p.Quantity, p.Unit,
	)
	if err != nil {
		return fmt.Errorf("creating product: %w", err)
	}
	return nil
}

// SeedProducts installs the demo catalog. Inserts are conflict-tolerant, so
// seeding an already-seeded database is a no-op.
func SeedProducts(ctx context.Context, d *db.DB) error {
	bestBefore := time.Date(2029, 2, 3, 9, 30, 0, 0, time.UTC)
	seed := []model.Product{
		{GTIN: "7090052090008", Name: "Glöd Sophie Elise Self Tan Express Foam", Category: "Glöd Sophie Elise", Batch: "TMSKDSFJ", BestBefore: &bestBefore, Quantity: 150, Unit: "FPACK"},
		{GTIN: "7090052090015", Name: "Glöd Sophie Elise Self Tan Remover Gel", Category: "Glöd Sophie Elise", Batch: "HGSKDUFM", BestBefore: &bestBefore, Quantity: 150, Unit: "FPACK"},
		{GTIN: "7090052090016", Name: "Glöd Sophie Elise Self Tan Mousse - Light", Category: "Glöd Sophie Elise", Batch: "BATCH001", BestBefore: &bestBefore, Quantity: 120, Unit: "FPACK"},
		{GTIN: "7090052090017", Name: "Glöd Sophie Elise Self Tan Mousse - Medium", Category: "Glöd Sophie Elise", Batch: "BATCH002", BestBefore: &bestBefore, Quantity: 100, Unit: "FPACK"},
		{GTIN: "7090052090018", Name: "Glöd Sophie Elise Self Tan Mousse - Dark", Category: "Glöd Sophie Elise", Batch: "BATCH003", BestBefore: &bestBefore, Quantity: 200, Unit: "FPACK"},
	}

	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range seed {
		_, err := tx.ExecContext(ctx,
			d.Rebind(`INSERT INTO products (gtin, name, category, batch, best_before, quantity, unit)
			          VALUES (?, ?, ?, ?, ?, ?, ?)
			          ON CONFLICT (gtin) DO NOTHING`),
			p.GTIN, p.Name, p.Category, p.Batch, p.BestBefore, p.Quantity, p.Unit,
		)
		if err != nil {
			return fmt.Errorf("seeding product %s: %w", p.GTIN, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}
	return nil
}
