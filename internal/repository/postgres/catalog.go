// Package postgres reads the catalog from PostgreSQL when CATALOG_SOURCE=postgres.
// The table layout lives in schema.sql.
package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/utafrali/litreads/internal/domain"
	"github.com/utafrali/litreads/pkg/database"
)

//go:embed schema.sql
var schemaSQL string

const upsertProductSQL = `
		INSERT INTO products (id, title, author, category, price, image, description, position)
		VALUES ($1, $2, $3, $4, $5::numeric, NULLIF($6, ''), NULLIF($7, ''), $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			image = EXCLUDED.image,
			description = EXCLUDED.description,
			position = EXCLUDED.position`

const listProductsSQL = `
		SELECT id, title, author, category, price::text, COALESCE(image, ''), COALESCE(description, ''), position
		FROM products
		ORDER BY position ASC, id ASC`

// CatalogRepository implements repository.CatalogRepository.
type CatalogRepository struct {
	db database.DBTX
}

// NewCatalogRepository creates a repository over a pool or transaction.
func NewCatalogRepository(db database.DBTX) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListProducts returns every product ordered by position.
func (r *CatalogRepository) ListProducts(ctx context.Context) (_ []domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, "ListProducts", listProductsSQL)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p     domain.Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Author, &p.Category, &price, &p.Image, &p.Description, &p.Position); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse price of product %d: %w", p.ID, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// EnsureSchema creates the products table if it does not exist.
func (r *CatalogRepository) EnsureSchema(ctx context.Context) (err error) {
	ctx, end := database.TraceQuery(ctx, "EnsureSchema", schemaSQL)
	defer func() { end(err) }()

	if _, err = r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create products schema: %w", err)
	}
	return nil
}

// UpsertProducts inserts or replaces each product by id. It returns the
// number of rows written before the first failure.
func (r *CatalogRepository) UpsertProducts(ctx context.Context, products []domain.Product) (n int, err error) {
	ctx, end := database.TraceQuery(ctx, "UpsertProducts", upsertProductSQL)
	defer func() { end(err) }()

	for _, p := range products {
		if _, err = r.db.Exec(ctx, upsertProductSQL,
			p.ID, p.Title, p.Author, p.Category, p.Price.StringFixed(2), p.Image, p.Description, p.Position,
		); err != nil {
			return n, fmt.Errorf("upsert product %d: %w", p.ID, err)
		}
		n++
	}
	return n, nil
}
