package order

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
)

type ItemQueryRepo struct {
	DB *pgxpool.Pool
}

// FindByOrder returns the order's active lines.
func (r *ItemQueryRepo) FindByOrder(ctx context.Context, orderID int) ([]domain.OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT order_item_id, order_id, product_id, quantity, price, created_at, updated_at, deleted_at
		FROM order_items
		WHERE order_id = $1 AND deleted_at IS NULL
		ORDER BY order_item_id`,
		orderID,
	)
	if err != nil {
		return nil, apperr.FromPg("list order items", err)
	}
	defer rows.Close()

	var out []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price,
			&it.CreatedAt, &it.UpdatedAt, &it.DeletedAt); err != nil {
			return nil, apperr.FromPg("scan order item", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.FromPg("list order items", err)
	}
	return out, nil
}
