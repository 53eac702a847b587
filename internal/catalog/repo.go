package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Querier: irisan pgxpool.Pool yang repo pakai. Test pasang fake di sini.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo: admin-side catalog. Mutasi stok saat order commit BUKAN di sini,
// itu kerjaan ledger di orders.PgStore.
type Repo struct{ DB Querier }

var (
	ErrNoProduct    = errors.New("product not found")
	ErrInvalidInput = errors.New("invalid product input")
)

type CreateInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

type UpdateInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
}

type ProductPage struct {
	Products []orders.Product `json:"products"`
	Meta     orders.ListMeta  `json:"meta"`
}

func (r *Repo) Create(ctx context.Context, in CreateInput) (*orders.Product, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidInput)
	}
	if in.Price.IsNegative() || in.Stock < 0 {
		return nil, fmt.Errorf("%w: price and stock must be non-negative", ErrInvalidInput)
	}
	now := time.Now().UTC()
	p := orders.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Stock:       in.Stock,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, name, description, category, price, stock, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Name, p.Description, p.Category, p.Price, p.Stock, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update: partial, hanya kolom yang dikirim.
func (r *Repo) Update(ctx context.Context, id string, in UpdateInput) (*orders.Product, error) {
	set := ""
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s = $%d", col, len(args))
	}
	if in.Name != nil {
		add("name", *in.Name)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.Category != nil {
		add("category", *in.Category)
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
		}
		add("price", *in.Price)
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must be non-negative", ErrInvalidInput)
		}
		add("stock", *in.Stock)
	}
	if set == "" {
		return r.Get(ctx, id)
	}
	add("updated_at", time.Now().UTC())

	ct, err := r.DB.Exec(ctx, `UPDATE products SET `+set+` WHERE id = $1 AND is_active`, args...)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() != 1 {
		return nil, ErrNoProduct
	}
	return r.Get(ctx, id)
}

// Deactivate: soft delete, row tetap ada supaya snapshot order lama valid.
func (r *Repo) Deactivate(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET is_active = false, updated_at = now()
		WHERE id = $1 AND is_active`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrNoProduct
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (*orders.Product, error) {
	var p orders.Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, description, category, price, stock, is_active, created_at, updated_at
		FROM products WHERE id = $1 AND is_active`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Stock,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoProduct
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List: produk aktif, filter kategori opsional, paginated.
func (r *Repo) List(ctx context.Context, category string, page, limit int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	where := `WHERE is_active`
	args := []any{limit, offset}
	if category != "" {
		args = append(args, category)
		where += fmt.Sprintf(` AND category = $%d`, len(args))
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, name, description, category, price, stock, is_active, created_at, updated_at
		FROM products `+where+`
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []orders.Product{}
	for rows.Next() {
		var p orders.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Stock,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var total int
	countArgs := args[2:]
	countWhere := `WHERE is_active`
	if category != "" {
		countWhere += ` AND category = $1`
	}
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products `+countWhere, countArgs...).Scan(&total); err != nil {
		return nil, err
	}

	return &ProductPage{
		Products: out,
		Meta: orders.ListMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
	}, nil
}
