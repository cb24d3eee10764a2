package product

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
)

type QueryRepo struct {
	DB *pgxpool.Pool
}

func (r *QueryRepo) FindAll(ctx context.Context, req domain.FindAllRequest) ([]domain.Product, int, error) {
	req.Normalize()
	return r.list(ctx, req, "")
}

func (r *QueryRepo) FindActive(ctx context.Context, req domain.FindAllRequest) ([]domain.Product, int, error) {
	req.Normalize()
	return r.list(ctx, req, "AND deleted_at IS NULL")
}

func (r *QueryRepo) FindTrashed(ctx context.Context, req domain.FindAllRequest) ([]domain.Product, int, error) {
	req.Normalize()
	return r.list(ctx, req, "AND deleted_at IS NOT NULL")
}

func (r *QueryRepo) list(ctx context.Context, req domain.FindAllRequest, scope string) ([]domain.Product, int, error) {
	search := "%" + req.Search + "%"

	var total int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM products
		WHERE name ILIKE $1 `+scope,
		search,
	).Scan(&total)
	if err != nil {
		return nil, 0, apperr.FromPg("count products", err)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT `+productCols+` FROM products
		WHERE name ILIKE $1 `+scope+`
		ORDER BY created_at DESC, product_id DESC
		LIMIT $2 OFFSET $3`,
		search, req.PageSize, req.Offset(),
	)
	if err != nil {
		return nil, 0, apperr.FromPg("list products", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
			return nil, 0, apperr.FromPg("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.FromPg("list products", err)
	}
	return out, total, nil
}

func (r *QueryRepo) FindByID(ctx context.Context, productID int) (domain.Product, error) {
	var p domain.Product
	err := r.DB.QueryRow(ctx, `
		SELECT `+productCols+` FROM products WHERE product_id = $1`,
		productID,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return domain.Product{}, apperr.FromPg("find product", err)
	}
	return p, nil
}
