package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/vasii/catalog/internal/core/domain"
	"github.com/vasii/catalog/internal/infrastructure/resilience"
)

const upsertProductSQL = `
INSERT INTO products (
	id, code, category, subcategory, size, fabric, price, image_url, stock, is_plus, collection, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)
ON CONFLICT (id) DO UPDATE SET
	code = EXCLUDED.code,
	category = EXCLUDED.category,
	subcategory = EXCLUDED.subcategory,
	size = EXCLUDED.size,
	fabric = EXCLUDED.fabric,
	price = EXCLUDED.price,
	image_url = EXCLUDED.image_url,
	stock = EXCLUDED.stock,
	is_plus = EXCLUDED.is_plus,
	collection = EXCLUDED.collection,
	updated_at = EXCLUDED.updated_at
`

const selectProductsSQL = `
SELECT id, code, category, subcategory, size, fabric, price, image_url, stock, is_plus, collection
FROM products
`

type ProductRepository struct {
	db       *sql.DB
	executor *resilience.Executor
}

func NewProductRepository(db *sql.DB, executor *resilience.Executor) *ProductRepository {
	return &ProductRepository{db: db, executor: executor}
}

// productRow mirrors the products table. It is the only bridge between
// stored rows and domain products.
type productRow struct {
	ID          int64
	Code        string
	Category    string
	Subcategory string
	Size        string
	Fabric      string
	Price       int64
	ImageURL    string
	Stock       int
	IsPlus      bool
	Collection  string
}

func rowFromProduct(fp domain.FinalizedProduct) productRow {
	p := fp.Product()
	return productRow{
		ID:          p.ID,
		Code:        p.Code,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Size:        p.Size,
		Fabric:      p.Fabric,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		IsPlus:      p.IsPlus,
		Collection:  string(p.Collection),
	}
}

func (r productRow) finalize() (domain.FinalizedProduct, error) {
	return domain.Finalize(domain.Product{
		ID:          r.ID,
		Code:        r.Code,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Size:        r.Size,
		Fabric:      r.Fabric,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Stock:       r.Stock,
		IsPlus:      r.IsPlus,
		Collection:  domain.Collection(r.Collection),
	})
}

// UpsertBatch writes products in one transaction, inserting new ids and
// updating existing ones.
func (r *ProductRepository) UpsertBatch(ctx context.Context, products []domain.FinalizedProduct) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]productRow, len(products))
	for i, fp := range products {
		rows[i] = rowFromProduct(fp)
	}

	err := r.executor.Execute(ctx, "postgres.products.upsert", func(ctx context.Context) error {
		return r.upsertTx(ctx, rows)
	}, classifyPostgresError)
	return resilience.WrapTemporary("upsert products", err, classifyPostgresError)
}

func (r *ProductRepository) upsertTx(ctx context.Context, rows []productRow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, upsertProductSQL)
	if err != nil {
		return fmt.Errorf("prepare product upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			row.ID, row.Code, row.Category, row.Subcategory, row.Size, row.Fabric,
			row.Price, row.ImageURL, row.Stock, row.IsPlus, row.Collection, now,
		); err != nil {
			return fmt.Errorf("upsert product %d: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert tx: %w", err)
	}
	return nil
}

// List returns all products ordered by id, restricted to collection when it
// is set. Rows that no longer pass validation are logged and skipped.
func (r *ProductRepository) List(ctx context.Context, collection domain.Collection) ([]domain.FinalizedProduct, error) {
	out, err := resilience.Do(ctx, r.executor, "postgres.products.list", func(ctx context.Context) ([]domain.FinalizedProduct, error) {
		return r.list(ctx, collection)
	}, classifyPostgresError)
	if err != nil {
		return nil, resilience.WrapTemporary("list products", err, classifyPostgresError)
	}
	return out, nil
}

func (r *ProductRepository) list(ctx context.Context, collection domain.Collection) ([]domain.FinalizedProduct, error) {
	query := selectProductsSQL
	var args []any
	if collection != "" {
		query += "WHERE collection = $1\n"
		args = append(args, string(collection))
	}
	query += "ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]domain.FinalizedProduct, 0)
	for rows.Next() {
		var row productRow
		if err := rows.Scan(
			&row.ID, &row.Code, &row.Category, &row.Subcategory, &row.Size, &row.Fabric,
			&row.Price, &row.ImageURL, &row.Stock, &row.IsPlus, &row.Collection,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		fp, err := row.finalize()
		if err != nil {
			slog.Warn("product_row_invalid", "product_id", row.ID, "error", err)
			continue
		}
		out = append(out, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}
