package product

import (
	"context"
	"fmt"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
)

// fakeStock tracks per-product stock and records every adjustment in order.
type fakeStock struct {
	stock map[int]int
	calls []string
	fail  error
}

func newFakeStock(initial map[int]int) *fakeStock {
	return &fakeStock{stock: initial}
}

func (f *fakeStock) IncreaseStock(_ context.Context, productID, qty int) (domain.Product, error) {
	f.calls = append(f.calls, fmt.Sprintf("inc %d %d", productID, qty))
	if f.fail != nil {
		return domain.Product{}, f.fail
	}
	f.stock[productID] += qty
	return domain.Product{ID: productID, Stock: f.stock[productID]}, nil
}

func (f *fakeStock) DecreaseStock(_ context.Context, productID, qty int) (domain.Product, error) {
	f.calls = append(f.calls, fmt.Sprintf("dec %d %d", productID, qty))
	if f.fail != nil {
		return domain.Product{}, f.fail
	}
	if f.stock[productID] < qty {
		return domain.Product{}, fmt.Errorf("product %d: %w", productID, apperr.ErrInsufficientStock)
	}
	f.stock[productID] -= qty
	return domain.Product{ID: productID, Stock: f.stock[productID]}, nil
}

func message(t *testing.T, ev domain.OrderEvent) kafka.Message {
	t.Helper()
	b, err := domain.MarshalOrderEvent(ev)
	require.NoError(t, err)
	return kafka.Message{Key: domain.PartitionKey(ev.EventOrderID()), Value: b}
}

func TestReconcilerCreatedDecrementsStock(t *testing.T) {
	stock := newFakeStock(map[int]int{1: 10, 2: 4})
	r := NewReconciler(stock)

	err := r.Handle(context.Background(), message(t, domain.OrderCreated{
		OrderID: 5,
		UserID:  1,
		Items: []domain.OrderItemEvent{
			{ProductID: 1, Quantity: 3},
			{ProductID: 2, Quantity: 4},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, 7, stock.stock[1])
	assert.Equal(t, 0, stock.stock[2])
}

func TestReconcilerUpdatedAppliesSignedDeltas(t *testing.T) {
	stock := newFakeStock(map[int]int{1: 10, 2: 10, 3: 10})
	r := NewReconciler(stock)

	err := r.Handle(context.Background(), message(t, domain.OrderUpdated{
		OrderID: 5,
		Updates: []domain.OrderItemUpdateEvent{
			{ProductID: 1, OldQuantity: 2, NewQuantity: 6}, // grew, decrement 4
			{ProductID: 2, OldQuantity: 6, NewQuantity: 2}, // shrank, restore 4
			{ProductID: 3, OldQuantity: 3, NewQuantity: 3}, // unchanged, no touch
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, 6, stock.stock[1])
	assert.Equal(t, 14, stock.stock[2])
	assert.Equal(t, 10, stock.stock[3])
	assert.Equal(t, []string{"dec 1 4", "inc 2 4"}, stock.calls)
}

func TestReconcilerDeletedRestoresStock(t *testing.T) {
	stock := newFakeStock(map[int]int{1: 2})
	r := NewReconciler(stock)

	err := r.Handle(context.Background(), message(t, domain.OrderDeleted{
		OrderID:      5,
		DeletedItems: []domain.OrderItemEvent{{ProductID: 1, Quantity: 8}},
	}))
	require.NoError(t, err)
	assert.Equal(t, 10, stock.stock[1])
}

func TestReconcilerInsufficientStockFailsMessage(t *testing.T) {
	stock := newFakeStock(map[int]int{1: 2})
	r := NewReconciler(stock)

	err := r.Handle(context.Background(), message(t, domain.OrderCreated{
		OrderID: 5,
		Items:   []domain.OrderItemEvent{{ProductID: 1, Quantity: 3}},
	}))
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	// guarded decrement left stock untouched
	assert.Equal(t, 2, stock.stock[1])
}

func TestReconcilerMalformedPayloadFails(t *testing.T) {
	r := NewReconciler(newFakeStock(nil))

	err := r.Handle(context.Background(), kafka.Message{Value: []byte(`{"type":"Refunded"}`)})
	require.Error(t, err)
}

// Delivery is at-least-once: a replayed message applies its delta again.
// This pins the documented behavior so an idempotency layer, if one is ever
// added, shows up as a deliberate test change.
func TestReconcilerReplayDoubleApplies(t *testing.T) {
	stock := newFakeStock(map[int]int{1: 10})
	r := NewReconciler(stock)
	m := message(t, domain.OrderCreated{
		OrderID: 5,
		Items:   []domain.OrderItemEvent{{ProductID: 1, Quantity: 3}},
	})

	require.NoError(t, r.Handle(context.Background(), m))
	require.NoError(t, r.Handle(context.Background(), m))
	assert.Equal(t, 4, stock.stock[1])
}
