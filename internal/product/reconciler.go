package product

import (
	"context"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/andikarachman/go-shop-events/internal/domain"
	"github.com/andikarachman/go-shop-events/internal/metrics"
)

// StockAdjuster is the slice of the command service the reconciler needs.
type StockAdjuster interface {
	IncreaseStock(ctx context.Context, productID, qty int) (domain.Product, error)
	DecreaseStock(ctx context.Context, productID, qty int) (domain.Product, error)
}

// Reconciler applies order lifecycle events to product stock. Created
// decrements by each line's quantity, Deleted restores it, Updated applies
// the signed per-product delta. Any failed adjustment fails the whole
// message so the consumer retries it; delivery is at-least-once, so a crash
// between the adjustment and the offset commit can replay an event and
// over-apply its delta.
type Reconciler struct {
	stock StockAdjuster
}

func NewReconciler(stock StockAdjuster) *Reconciler {
	return &Reconciler{stock: stock}
}

func (r *Reconciler) Handle(ctx context.Context, m kafka.Message) error {
	ev, err := domain.UnmarshalOrderEvent(m.Value)
	if err != nil {
		metrics.ReconcileFailures.Inc()
		return err
	}
	metrics.EventsConsumed.WithLabelValues(ev.EventType()).Inc()

	if key := string(m.Key); key != strconv.Itoa(ev.EventOrderID()) {
		zap.L().Warn("event key does not match order id",
			zap.String("key", key),
			zap.Int("order_id", ev.EventOrderID()))
	}

	if err := r.apply(ctx, ev); err != nil {
		metrics.ReconcileFailures.Inc()
		return err
	}

	zap.L().Info("order event reconciled",
		zap.String("type", ev.EventType()),
		zap.Int("order_id", ev.EventOrderID()))
	return nil
}

func (r *Reconciler) apply(ctx context.Context, ev domain.OrderEvent) error {
	switch e := ev.(type) {
	case domain.OrderCreated:
		for _, it := range e.Items {
			if _, err := r.stock.DecreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("order %d created: %w", e.OrderID, err)
			}
		}
	case domain.OrderUpdated:
		for _, u := range e.Updates {
			delta := u.NewQuantity - u.OldQuantity
			var err error
			switch {
			case delta > 0:
				_, err = r.stock.DecreaseStock(ctx, u.ProductID, delta)
			case delta < 0:
				_, err = r.stock.IncreaseStock(ctx, u.ProductID, -delta)
			}
			if err != nil {
				return fmt.Errorf("order %d updated: %w", e.OrderID, err)
			}
		}
	case domain.OrderDeleted:
		for _, it := range e.DeletedItems {
			if _, err := r.stock.IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("order %d deleted: %w", e.OrderID, err)
			}
		}
	}
	return nil
}
