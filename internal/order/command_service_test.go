package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
)

type fakeCommandStore struct {
	created   []ItemRecord
	updated   []ItemRecord
	deleted   []int
	nextOrder domain.Order
	err       error
}

func (f *fakeCommandStore) CreateWithItems(_ context.Context, userID, totalPrice int, items []ItemRecord) (domain.Order, error) {
	if f.err != nil {
		return domain.Order{}, f.err
	}
	f.created = items
	o := f.nextOrder
	o.UserID = userID
	o.TotalPrice = totalPrice
	return o, nil
}

func (f *fakeCommandStore) UpdateWithItems(_ context.Context, orderID, userID, totalPrice int, items []ItemRecord) (domain.Order, error) {
	if f.err != nil {
		return domain.Order{}, f.err
	}
	f.updated = items
	return domain.Order{ID: orderID, UserID: userID, TotalPrice: totalPrice}, nil
}

func (f *fakeCommandStore) Trash(_ context.Context, orderID int) (domain.Order, error) {
	return domain.Order{ID: orderID}, f.err
}

func (f *fakeCommandStore) Restore(_ context.Context, orderID int) (domain.Order, error) {
	return domain.Order{ID: orderID}, f.err
}

func (f *fakeCommandStore) Delete(_ context.Context, orderID int) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, orderID)
	return nil
}

func (f *fakeCommandStore) RestoreAll(context.Context) error { return f.err }

type fakeQueryStore struct {
	byID    map[int]domain.Order
	trashed []domain.Order
	store   *fakeCommandStore
}

func (f *fakeQueryStore) FindAll(context.Context, domain.FindAllRequest) ([]domain.Order, int, error) {
	return nil, 0, nil
}
func (f *fakeQueryStore) FindActive(context.Context, domain.FindAllRequest) ([]domain.Order, int, error) {
	return nil, 0, nil
}

// FindTrashed hides orders the command store already deleted, mimicking the
// real repository's view shrinking during a sweep.
func (f *fakeQueryStore) FindTrashed(context.Context, domain.FindAllRequest) ([]domain.Order, int, error) {
	var out []domain.Order
	for _, o := range f.trashed {
		gone := false
		for _, id := range f.store.deleted {
			if id == o.ID {
				gone = true
				break
			}
		}
		if !gone {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}
func (f *fakeQueryStore) FindByID(_ context.Context, orderID int) (domain.Order, error) {
	o, ok := f.byID[orderID]
	if !ok {
		return domain.Order{}, apperr.ErrNotFound
	}
	return o, nil
}

type fakeItemStore struct {
	items   []domain.OrderItem
	byOrder map[int][]domain.OrderItem
}

func (f *fakeItemStore) FindByOrder(_ context.Context, orderID int) ([]domain.OrderItem, error) {
	if f.byOrder != nil {
		return f.byOrder[orderID], nil
	}
	return f.items, nil
}

type fakeFinder struct {
	snaps map[int]domain.ProductSnapshot
}

func (f *fakeFinder) FindByID(_ context.Context, productID int) (domain.ProductSnapshot, error) {
	snap, ok := f.snaps[productID]
	if !ok {
		return domain.ProductSnapshot{}, apperr.ErrNotFound
	}
	return snap, nil
}

type published struct {
	topic string
	key   []byte
	value []byte
}

type fakeBus struct {
	events []published
	err    error
}

func (f *fakeBus) Publish(_ context.Context, topic string, key, value []byte) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, published{topic: topic, key: key, value: value})
	return nil
}

type fakeCache struct {
	invalidated []string
}

func (f *fakeCache) Get(context.Context, string, any) bool        { return false }
func (f *fakeCache) Set(context.Context, string, any, time.Duration) {}
func (f *fakeCache) Del(context.Context, ...string)               {}
func (f *fakeCache) DelPrefix(_ context.Context, prefix string) {
	f.invalidated = append(f.invalidated, prefix)
}

type fixture struct {
	svc   *CommandService
	store *fakeCommandStore
	query *fakeQueryStore
	items *fakeItemStore
	bus   *fakeBus
	cache *fakeCache
}

func newFixture(snaps map[int]domain.ProductSnapshot) *fixture {
	f := &fixture{
		store: &fakeCommandStore{nextOrder: domain.Order{ID: 11}},
		query: &fakeQueryStore{byID: map[int]domain.Order{}},
		items: &fakeItemStore{},
		bus:   &fakeBus{},
		cache: &fakeCache{},
	}
	f.query.store = f.store
	f.svc = NewCommandService(f.store, f.query, f.items, &fakeFinder{snaps: snaps}, f.bus, f.cache)
	return f
}

func TestCreateOrderPricesFromSnapshotAndPublishes(t *testing.T) {
	f := newFixture(map[int]domain.ProductSnapshot{
		1: {ID: 1, Price: 100, Stock: 10},
		2: {ID: 2, Price: 250, Stock: 5},
	})

	o, err := f.svc.Create(context.Background(), &domain.CreateOrderRequest{
		UserID: 9,
		Items: []domain.CreateOrderItemRequest{
			{ProductID: 1, Quantity: 2, Price: 1}, // client price ignored
			{ProductID: 2, Quantity: 3, Price: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2*100+3*250, o.TotalPrice)
	assert.Equal(t, []ItemRecord{
		{ProductID: 1, Quantity: 2, Price: 100},
		{ProductID: 2, Quantity: 3, Price: 250},
	}, f.store.created)

	require.Len(t, f.bus.events, 1)
	assert.Equal(t, domain.TopicOrderEvents, f.bus.events[0].topic)
	assert.Equal(t, []byte("11"), f.bus.events[0].key)

	ev, err := domain.UnmarshalOrderEvent(f.bus.events[0].value)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCreated{
		OrderID: 11,
		UserID:  9,
		Items: []domain.OrderItemEvent{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 3},
		},
	}, ev)

	assert.Contains(t, f.cache.invalidated, "order:")
}

func TestCreateOrderRejectsInvalidRequest(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.Create(context.Background(), &domain.CreateOrderRequest{UserID: 9})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, f.bus.events)
}

func TestCreateOrderRejectsInsufficientStock(t *testing.T) {
	f := newFixture(map[int]domain.ProductSnapshot{1: {ID: 1, Price: 100, Stock: 2}})

	_, err := f.svc.Create(context.Background(), &domain.CreateOrderRequest{
		UserID: 9,
		Items:  []domain.CreateOrderItemRequest{{ProductID: 1, Quantity: 3, Price: 1}},
	})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Nil(t, f.store.created)
	assert.Empty(t, f.bus.events)
}

func TestCreateOrderRejectsUnknownProduct(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.Create(context.Background(), &domain.CreateOrderRequest{
		UserID: 9,
		Items:  []domain.CreateOrderItemRequest{{ProductID: 42, Quantity: 1, Price: 1}},
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

// A failed publish on create is logged, not surfaced: the order row is
// already committed and the caller gets it back.
func TestCreateOrderSurvivesPublishFailure(t *testing.T) {
	f := newFixture(map[int]domain.ProductSnapshot{1: {ID: 1, Price: 100, Stock: 10}})
	f.bus.err = errors.New("broker down")

	o, err := f.svc.Create(context.Background(), &domain.CreateOrderRequest{
		UserID: 9,
		Items:  []domain.CreateOrderItemRequest{{ProductID: 1, Quantity: 1, Price: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 11, o.ID)
}

func TestUpdateOrderEmitsFullDiff(t *testing.T) {
	f := newFixture(map[int]domain.ProductSnapshot{
		1: {ID: 1, Price: 100, Stock: 10},
		3: {ID: 3, Price: 50, Stock: 10},
	})
	f.query.byID[11] = domain.Order{ID: 11, UserID: 9}
	f.items.items = []domain.OrderItem{
		{OrderID: 11, ProductID: 1, Quantity: 2}, // will grow to 5
		{OrderID: 11, ProductID: 2, Quantity: 4}, // will be removed
	}

	_, err := f.svc.Update(context.Background(), &domain.UpdateOrderRequest{
		OrderID: 11,
		UserID:  9,
		Items: []domain.CreateOrderItemRequest{
			{ProductID: 1, Quantity: 5, Price: 1},
			{ProductID: 3, Quantity: 1, Price: 1}, // added
		},
	})
	require.NoError(t, err)

	require.Len(t, f.bus.events, 1)
	ev, err := domain.UnmarshalOrderEvent(f.bus.events[0].value)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderUpdated{
		OrderID: 11,
		Updates: []domain.OrderItemUpdateEvent{
			{ProductID: 1, OldQuantity: 2, NewQuantity: 5},
			{ProductID: 3, OldQuantity: 0, NewQuantity: 1},
			{ProductID: 2, OldQuantity: 4, NewQuantity: 0},
		},
	}, ev)
}

func TestUpdateOrderSkipsEventWhenUnchanged(t *testing.T) {
	f := newFixture(map[int]domain.ProductSnapshot{1: {ID: 1, Price: 100, Stock: 10}})
	f.query.byID[11] = domain.Order{ID: 11, UserID: 9}
	f.items.items = []domain.OrderItem{{OrderID: 11, ProductID: 1, Quantity: 2}}

	_, err := f.svc.Update(context.Background(), &domain.UpdateOrderRequest{
		OrderID: 11,
		UserID:  9,
		Items:   []domain.CreateOrderItemRequest{{ProductID: 1, Quantity: 2, Price: 1}},
	})
	require.NoError(t, err)
	assert.Empty(t, f.bus.events)
}

func TestUpdateOrderPublishFailureIsBusError(t *testing.T) {
	f := newFixture(map[int]domain.ProductSnapshot{1: {ID: 1, Price: 100, Stock: 10}})
	f.query.byID[11] = domain.Order{ID: 11, UserID: 9}
	f.items.items = []domain.OrderItem{{OrderID: 11, ProductID: 1, Quantity: 2}}
	f.bus.err = errors.New("broker down")

	_, err := f.svc.Update(context.Background(), &domain.UpdateOrderRequest{
		OrderID: 11,
		UserID:  9,
		Items:   []domain.CreateOrderItemRequest{{ProductID: 1, Quantity: 5, Price: 1}},
	})
	var be *apperr.BusError
	require.ErrorAs(t, err, &be)
}

func TestDeleteOrderRequiresTrash(t *testing.T) {
	f := newFixture(nil)
	f.query.byID[11] = domain.Order{ID: 11} // DeletedAt nil, still active

	err := f.svc.Delete(context.Background(), 11)
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Empty(t, f.store.deleted)
}

func TestDeleteOrderPublishesBeforeRemoval(t *testing.T) {
	now := time.Now()
	f := newFixture(nil)
	f.query.byID[11] = domain.Order{ID: 11, DeletedAt: &now}
	f.items.items = []domain.OrderItem{{OrderID: 11, ProductID: 1, Quantity: 2}}

	require.NoError(t, f.svc.Delete(context.Background(), 11))

	require.Len(t, f.bus.events, 1)
	ev, err := domain.UnmarshalOrderEvent(f.bus.events[0].value)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDeleted{
		OrderID:      11,
		DeletedItems: []domain.OrderItemEvent{{ProductID: 1, Quantity: 2}},
	}, ev)
	assert.Equal(t, []int{11}, f.store.deleted)
}

func TestCreateOrderRejectsDuplicateProductLines(t *testing.T) {
	f := newFixture(map[int]domain.ProductSnapshot{1: {ID: 1, Price: 100, Stock: 10}})

	_, err := f.svc.Create(context.Background(), &domain.CreateOrderRequest{
		UserID: 9,
		Items: []domain.CreateOrderItemRequest{
			{ProductID: 1, Quantity: 2, Price: 1},
			{ProductID: 1, Quantity: 3, Price: 1},
		},
	})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Nil(t, f.store.created)
	assert.Empty(t, f.bus.events)
}

func TestUpdateOrderRejectsDuplicateProductLines(t *testing.T) {
	f := newFixture(map[int]domain.ProductSnapshot{1: {ID: 1, Price: 100, Stock: 10}})
	f.query.byID[11] = domain.Order{ID: 11, UserID: 9}
	f.items.items = []domain.OrderItem{{OrderID: 11, ProductID: 1, Quantity: 2}}

	_, err := f.svc.Update(context.Background(), &domain.UpdateOrderRequest{
		OrderID: 11,
		UserID:  9,
		Items: []domain.CreateOrderItemRequest{
			{ProductID: 1, Quantity: 2, Price: 1},
			{ProductID: 1, Quantity: 5, Price: 1},
		},
	})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Nil(t, f.store.updated)
	assert.Empty(t, f.bus.events)
}

// Bulk hard delete compensates every order individually; skipping the events
// would leave each order's stock decrement permanent.
func TestDeleteAllPublishesCompensationPerOrder(t *testing.T) {
	now := time.Now()
	f := newFixture(nil)
	f.query.trashed = []domain.Order{
		{ID: 11, DeletedAt: &now},
		{ID: 12, DeletedAt: &now},
	}
	f.items.byOrder = map[int][]domain.OrderItem{
		11: {{OrderID: 11, ProductID: 1, Quantity: 2}},
		12: {{OrderID: 12, ProductID: 3, Quantity: 4}},
	}

	require.NoError(t, f.svc.DeleteAll(context.Background()))

	require.Len(t, f.bus.events, 2)
	first, err := domain.UnmarshalOrderEvent(f.bus.events[0].value)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDeleted{
		OrderID:      11,
		DeletedItems: []domain.OrderItemEvent{{ProductID: 1, Quantity: 2}},
	}, first)
	second, err := domain.UnmarshalOrderEvent(f.bus.events[1].value)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDeleted{
		OrderID:      12,
		DeletedItems: []domain.OrderItemEvent{{ProductID: 3, Quantity: 4}},
	}, second)
	assert.Equal(t, []int{11, 12}, f.store.deleted)
}

func TestDeleteAllPublishFailureStopsSweep(t *testing.T) {
	now := time.Now()
	f := newFixture(nil)
	f.query.trashed = []domain.Order{{ID: 11, DeletedAt: &now}}
	f.items.byOrder = map[int][]domain.OrderItem{
		11: {{OrderID: 11, ProductID: 1, Quantity: 2}},
	}
	f.bus.err = errors.New("broker down")

	err := f.svc.DeleteAll(context.Background())
	var be *apperr.BusError
	require.ErrorAs(t, err, &be)
	assert.Empty(t, f.store.deleted, "no row may be removed without its compensating event")
}

func TestDeleteOrderPublishFailureAborts(t *testing.T) {
	now := time.Now()
	f := newFixture(nil)
	f.query.byID[11] = domain.Order{ID: 11, DeletedAt: &now}
	f.items.items = []domain.OrderItem{{OrderID: 11, ProductID: 1, Quantity: 2}}
	f.bus.err = errors.New("broker down")

	err := f.svc.Delete(context.Background(), 11)
	var be *apperr.BusError
	require.ErrorAs(t, err, &be)
	assert.Empty(t, f.store.deleted, "rows must survive when the compensating event cannot be published")
}
