package order

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
)

// ItemRecord is the write-side shape of one order line.
type ItemRecord struct {
	ProductID int
	Quantity  int
	Price     int
}

type CommandRepo struct {
	DB *pgxpool.Pool
}

// CreateWithItems writes the order and its items in one transaction so a
// partially created aggregate can never be observed.
func (r *CommandRepo) CreateWithItems(ctx context.Context, userID, totalPrice int, items []ItemRecord) (domain.Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Order{}, apperr.FromPg("create order: begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var o domain.Order
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, total_price, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		RETURNING order_id, user_id, total_price, created_at, updated_at, deleted_at`,
		userID, totalPrice,
	).Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt)
	if err != nil {
		return domain.Order{}, apperr.FromPg("create order", err)
	}

	for _, it := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())`,
			o.ID, it.ProductID, it.Quantity, it.Price,
		)
		if err != nil {
			return domain.Order{}, apperr.FromPg("create order item", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, apperr.FromPg("create order: commit", err)
	}
	zap.L().Info("order created", zap.Int("order_id", o.ID), zap.Int("user_id", o.UserID))
	return o, nil
}

// UpdateWithItems replaces the order's item set: existing lines are updated in
// place, new products inserted, and lines for products no longer present are
// soft-deleted.
func (r *CommandRepo) UpdateWithItems(ctx context.Context, orderID, userID, totalPrice int, items []ItemRecord) (domain.Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Order{}, apperr.FromPg("update order: begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var o domain.Order
	err = tx.QueryRow(ctx, `
		UPDATE orders
		SET user_id = $2, total_price = $3, updated_at = now()
		WHERE order_id = $1 AND deleted_at IS NULL
		RETURNING order_id, user_id, total_price, created_at, updated_at, deleted_at`,
		orderID, userID, totalPrice,
	).Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt)
	if err != nil {
		return domain.Order{}, apperr.FromPg("update order", err)
	}

	keep := make([]int, 0, len(items))
	for _, it := range items {
		keep = append(keep, it.ProductID)
		ct, err := tx.Exec(ctx, `
			UPDATE order_items
			SET quantity = $3, price = $4, updated_at = now(), deleted_at = NULL
			WHERE order_id = $1 AND product_id = $2`,
			orderID, it.ProductID, it.Quantity, it.Price,
		)
		if err != nil {
			return domain.Order{}, apperr.FromPg("update order item", err)
		}
		if ct.RowsAffected() == 0 {
			_, err = tx.Exec(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, price, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())`,
				orderID, it.ProductID, it.Quantity, it.Price,
			)
			if err != nil {
				return domain.Order{}, apperr.FromPg("insert order item", err)
			}
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE order_items
		SET deleted_at = now(), updated_at = now()
		WHERE order_id = $1 AND deleted_at IS NULL AND NOT (product_id = ANY($2))`,
		orderID, keep,
	)
	if err != nil {
		return domain.Order{}, apperr.FromPg("remove stale order items", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, apperr.FromPg("update order: commit", err)
	}
	zap.L().Info("order updated", zap.Int("order_id", o.ID))
	return o, nil
}

func (r *CommandRepo) Trash(ctx context.Context, orderID int) (domain.Order, error) {
	var o domain.Order
	err := r.DB.QueryRow(ctx, `
		UPDATE orders
		SET deleted_at = now(), updated_at = now()
		WHERE order_id = $1 AND deleted_at IS NULL
		RETURNING order_id, user_id, total_price, created_at, updated_at, deleted_at`,
		orderID,
	).Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt)
	if err != nil {
		return domain.Order{}, apperr.FromPg("trash order", err)
	}
	return o, nil
}

func (r *CommandRepo) Restore(ctx context.Context, orderID int) (domain.Order, error) {
	var o domain.Order
	err := r.DB.QueryRow(ctx, `
		UPDATE orders
		SET deleted_at = NULL, updated_at = now()
		WHERE order_id = $1 AND deleted_at IS NOT NULL
		RETURNING order_id, user_id, total_price, created_at, updated_at, deleted_at`,
		orderID,
	).Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt)
	if err != nil {
		return domain.Order{}, apperr.FromPg("restore order", err)
	}
	return o, nil
}

// Delete permanently removes an order that was already soft-deleted, items
// first. Callers emit the compensating Deleted event before invoking this.
func (r *CommandRepo) Delete(ctx context.Context, orderID int) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperr.FromPg("delete order: begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return apperr.FromPg("delete order items", err)
	}
	ct, err := tx.Exec(ctx, `DELETE FROM orders WHERE order_id = $1 AND deleted_at IS NOT NULL`, orderID)
	if err != nil {
		return apperr.FromPg("delete order", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.FromPg("delete order", pgx.ErrNoRows)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.FromPg("delete order: commit", err)
	}
	zap.L().Info("order hard-deleted", zap.Int("order_id", orderID))
	return nil
}

func (r *CommandRepo) RestoreAll(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE orders SET deleted_at = NULL, updated_at = now() WHERE deleted_at IS NOT NULL`)
	if err != nil {
		return apperr.FromPg("restore all orders", err)
	}
	return nil
}
