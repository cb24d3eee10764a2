package order

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
)

type QueryRepo struct {
	DB *pgxpool.Pool
}

const orderCols = `order_id, user_id, total_price, created_at, updated_at, deleted_at`

// List queries order by created_at DESC with order_id as tiebreaker so pages
// are deterministic across calls. Rows and total come from two independent
// queries; the count can lag a concurrent mutation by design.

func (r *QueryRepo) FindAll(ctx context.Context, req domain.FindAllRequest) ([]domain.Order, int, error) {
	req.Normalize()
	return r.list(ctx, req, "")
}

func (r *QueryRepo) FindActive(ctx context.Context, req domain.FindAllRequest) ([]domain.Order, int, error) {
	req.Normalize()
	return r.list(ctx, req, "AND deleted_at IS NULL")
}

func (r *QueryRepo) FindTrashed(ctx context.Context, req domain.FindAllRequest) ([]domain.Order, int, error) {
	req.Normalize()
	return r.list(ctx, req, "AND deleted_at IS NOT NULL")
}

func (r *QueryRepo) list(ctx context.Context, req domain.FindAllRequest, scope string) ([]domain.Order, int, error) {
	search := "%" + req.Search + "%"

	var total int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE user_id::TEXT ILIKE $1 `+scope,
		search,
	).Scan(&total)
	if err != nil {
		return nil, 0, apperr.FromPg("count orders", err)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE user_id::TEXT ILIKE $1 `+scope+`
		ORDER BY created_at DESC, order_id DESC
		LIMIT $2 OFFSET $3`,
		search, req.PageSize, req.Offset(),
	)
	if err != nil {
		return nil, 0, apperr.FromPg("list orders", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt); err != nil {
			return nil, 0, apperr.FromPg("scan order", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.FromPg("list orders", err)
	}
	return out, total, nil
}

func (r *QueryRepo) FindByID(ctx context.Context, orderID int) (domain.Order, error) {
	var o domain.Order
	err := r.DB.QueryRow(ctx, `
		SELECT `+orderCols+` FROM orders WHERE order_id = $1`,
		orderID,
	).Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt)
	if err != nil {
		return domain.Order{}, apperr.FromPg("find order", err)
	}
	return o, nil
}
