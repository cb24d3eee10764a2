package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
)

type CommandRepo struct {
	DB *pgxpool.Pool
}

const productCols = `product_id, name, price, stock, created_at, updated_at, deleted_at`

func (r *CommandRepo) Create(ctx context.Context, name string, price, stock int) (domain.Product, error) {
	var p domain.Product
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products (name, price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING `+productCols,
		name, price, stock,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return domain.Product{}, apperr.FromPg("create product", err)
	}
	zap.L().Info("product created", zap.Int("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (r *CommandRepo) Update(ctx context.Context, productID int, name string, price, stock int) (domain.Product, error) {
	var p domain.Product
	err := r.DB.QueryRow(ctx, `
		UPDATE products
		SET name = $2, price = $3, stock = $4, updated_at = now()
		WHERE product_id = $1 AND deleted_at IS NULL
		RETURNING `+productCols,
		productID, name, price, stock,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return domain.Product{}, apperr.FromPg("update product", err)
	}
	return p, nil
}

// IncreaseStock applies a positive delta in one statement; concurrent
// reconcilers touching the same row serialize on the row lock inside the
// UPDATE instead of racing a read-modify-write.
func (r *CommandRepo) IncreaseStock(ctx context.Context, productID, qty int) (domain.Product, error) {
	var p domain.Product
	err := r.DB.QueryRow(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE product_id = $1 AND deleted_at IS NULL
		RETURNING `+productCols,
		productID, qty,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return domain.Product{}, apperr.FromPg("increase stock", err)
	}
	zap.L().Info("stock increased",
		zap.Int("product_id", p.ID), zap.Int("qty", qty), zap.Int("stock", p.Stock))
	return p, nil
}

// DecreaseStock is guarded so stock can never go negative: the row only
// matches while stock covers the delta. A zero-row result is disambiguated
// into missing product vs insufficient stock.
func (r *CommandRepo) DecreaseStock(ctx context.Context, productID, qty int) (domain.Product, error) {
	var p domain.Product
	err := r.DB.QueryRow(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = now()
		WHERE product_id = $1 AND deleted_at IS NULL AND stock >= $2
		RETURNING `+productCols,
		productID, qty,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err == nil {
		zap.L().Info("stock decreased",
			zap.Int("product_id", p.ID), zap.Int("qty", qty), zap.Int("stock", p.Stock))
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, apperr.FromPg("decrease stock", err)
	}

	var stock int
	lookupErr := r.DB.QueryRow(ctx, `
		SELECT stock FROM products WHERE product_id = $1 AND deleted_at IS NULL`,
		productID,
	).Scan(&stock)
	if lookupErr != nil {
		return domain.Product{}, apperr.FromPg("decrease stock", lookupErr)
	}
	return domain.Product{}, fmt.Errorf("product %d: requested=%d available=%d: %w",
		productID, qty, stock, apperr.ErrInsufficientStock)
}

func (r *CommandRepo) Trash(ctx context.Context, productID int) (domain.Product, error) {
	var p domain.Product
	err := r.DB.QueryRow(ctx, `
		UPDATE products
		SET deleted_at = now(), updated_at = now()
		WHERE product_id = $1 AND deleted_at IS NULL
		RETURNING `+productCols,
		productID,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return domain.Product{}, apperr.FromPg("trash product", err)
	}
	return p, nil
}

func (r *CommandRepo) Restore(ctx context.Context, productID int) (domain.Product, error) {
	var p domain.Product
	err := r.DB.QueryRow(ctx, `
		UPDATE products
		SET deleted_at = NULL, updated_at = now()
		WHERE product_id = $1 AND deleted_at IS NOT NULL
		RETURNING `+productCols,
		productID,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return domain.Product{}, apperr.FromPg("restore product", err)
	}
	return p, nil
}

func (r *CommandRepo) Delete(ctx context.Context, productID int) error {
	ct, err := r.DB.Exec(ctx, `
		DELETE FROM products WHERE product_id = $1 AND deleted_at IS NOT NULL`,
		productID,
	)
	if err != nil {
		return apperr.FromPg("delete product", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.FromPg("delete product", pgx.ErrNoRows)
	}
	return nil
}

func (r *CommandRepo) RestoreAll(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE products SET deleted_at = NULL, updated_at = now() WHERE deleted_at IS NOT NULL`)
	if err != nil {
		return apperr.FromPg("restore all products", err)
	}
	return nil
}

func (r *CommandRepo) DeleteAll(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM products WHERE deleted_at IS NOT NULL`)
	if err != nil {
		return apperr.FromPg("delete all products", err)
	}
	return nil
}
