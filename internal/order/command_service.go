package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
	"github.com/andikarachman/go-shop-events/internal/redisx"
)

// CommandStore is the write side of the order aggregate.
type CommandStore interface {
	CreateWithItems(ctx context.Context, userID, totalPrice int, items []ItemRecord) (domain.Order, error)
	UpdateWithItems(ctx context.Context, orderID, userID, totalPrice int, items []ItemRecord) (domain.Order, error)
	Trash(ctx context.Context, orderID int) (domain.Order, error)
	Restore(ctx context.Context, orderID int) (domain.Order, error)
	Delete(ctx context.Context, orderID int) error
	RestoreAll(ctx context.Context) error
}

type QueryStore interface {
	FindAll(ctx context.Context, req domain.FindAllRequest) ([]domain.Order, int, error)
	FindActive(ctx context.Context, req domain.FindAllRequest) ([]domain.Order, int, error)
	FindTrashed(ctx context.Context, req domain.FindAllRequest) ([]domain.Order, int, error)
	FindByID(ctx context.Context, orderID int) (domain.Order, error)
}

type ItemStore interface {
	FindByOrder(ctx context.Context, orderID int) ([]domain.OrderItem, error)
}

// ProductFinder is the order service's view of the product service. The
// production implementation is an HTTP client; its connection management is
// owned elsewhere.
type ProductFinder interface {
	FindByID(ctx context.Context, productID int) (domain.ProductSnapshot, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type CommandService struct {
	repo     CommandStore
	queries  QueryStore
	items    ItemStore
	products ProductFinder
	bus      EventPublisher
	cache    redisx.Cache
	validate *validator.Validate
}

func NewCommandService(repo CommandStore, queries QueryStore, items ItemStore,
	products ProductFinder, bus EventPublisher, cache redisx.Cache) *CommandService {
	return &CommandService{
		repo:     repo,
		queries:  queries,
		items:    items,
		products: products,
		bus:      bus,
		cache:    cache,
		validate: validator.New(),
	}
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
		return &apperr.ValidationError{Fields: fields}
	}
	return apperr.Validation(err.Error())
}

// priceItems resolves every requested line against the product service,
// rejects lines exceeding current stock, and prices them from the snapshot.
// The snapshot price is authoritative; the client-supplied price is ignored.
func (s *CommandService) priceItems(ctx context.Context, items []domain.CreateOrderItemRequest) ([]ItemRecord, int, error) {
	records := make([]ItemRecord, 0, len(items))
	total := 0
	seen := make(map[int]bool, len(items))
	for _, it := range items {
		// Lines are keyed by product_id in storage and in the update diff, so
		// duplicates cannot be represented.
		if seen[it.ProductID] {
			return nil, 0, apperr.Validation(fmt.Sprintf("items: duplicate product_id %d", it.ProductID))
		}
		seen[it.ProductID] = true
		snap, err := s.products.FindByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, 0, fmt.Errorf("product %d: %w", it.ProductID, apperr.ErrNotFound)
			}
			return nil, 0, fmt.Errorf("product lookup %d: %w", it.ProductID, err)
		}
		if it.Quantity > snap.Stock {
			return nil, 0, fmt.Errorf("product %d: requested=%d available=%d: %w",
				it.ProductID, it.Quantity, snap.Stock, apperr.ErrInsufficientStock)
		}
		records = append(records, ItemRecord{ProductID: it.ProductID, Quantity: it.Quantity, Price: snap.Price})
		total += snap.Price * it.Quantity
	}
	return records, total, nil
}

// Create persists the aggregate, then publishes OrderCreated. The publish is
// deliberately not tied to the DB transaction: a failed publish is logged and
// the created order is still returned, which leaves a documented stock-drift
// window until the producer-side retries or an audit closes it.
func (s *CommandService) Create(ctx context.Context, req *domain.CreateOrderRequest) (domain.Order, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Order{}, validationError(err)
	}

	records, total, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return domain.Order{}, err
	}

	o, err := s.repo.CreateWithItems(ctx, req.UserID, total, records)
	if err != nil {
		return domain.Order{}, err
	}

	ev := domain.OrderCreated{OrderID: o.ID, UserID: o.UserID, Items: eventItems(records)}
	if err := s.publish(ctx, ev); err != nil {
		zap.L().Error("order created but event publish failed; stock will drift until reconciled",
			zap.Int("order_id", o.ID), zap.Error(err))
	}

	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return o, nil
}

// Update replaces the item set and emits one quantity delta per product that
// changed: lines present in both sets with a new quantity, lines added
// (old_quantity 0) and lines removed (new_quantity 0).
func (s *CommandService) Update(ctx context.Context, req *domain.UpdateOrderRequest) (domain.Order, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Order{}, validationError(err)
	}

	if _, err := s.queries.FindByID(ctx, req.OrderID); err != nil {
		return domain.Order{}, err
	}
	oldItems, err := s.items.FindByOrder(ctx, req.OrderID)
	if err != nil {
		return domain.Order{}, err
	}

	records, total, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return domain.Order{}, err
	}

	updates := diffItems(oldItems, records)

	o, err := s.repo.UpdateWithItems(ctx, req.OrderID, req.UserID, total, records)
	if err != nil {
		return domain.Order{}, err
	}

	if len(updates) > 0 {
		ev := domain.OrderUpdated{OrderID: o.ID, Updates: updates}
		if err := s.publish(ctx, ev); err != nil {
			return domain.Order{}, &apperr.BusError{Err: err}
		}
	}

	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return o, nil
}

func (s *CommandService) Trash(ctx context.Context, orderID int) (domain.Order, error) {
	o, err := s.repo.Trash(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return o, nil
}

func (s *CommandService) Restore(ctx context.Context, orderID int) (domain.Order, error) {
	o, err := s.repo.Restore(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return o, nil
}

// Delete permanently removes a trashed order. The compensating Deleted event
// is published before any row is touched: losing the event after the rows are
// gone would leave the stock decrement permanent.
func (s *CommandService) Delete(ctx context.Context, orderID int) error {
	o, err := s.queries.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.DeletedAt == nil {
		return fmt.Errorf("order %d is not trashed: %w", orderID, apperr.ErrConflict)
	}

	if err := s.hardDelete(ctx, orderID); err != nil {
		return err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return nil
}

// hardDelete emits the compensating Deleted event for one trashed order, then
// removes its rows. A publish failure aborts before anything is deleted.
func (s *CommandService) hardDelete(ctx context.Context, orderID int) error {
	items, err := s.items.FindByOrder(ctx, orderID)
	if err != nil {
		return err
	}

	deleted := make([]domain.OrderItemEvent, 0, len(items))
	for _, it := range items {
		deleted = append(deleted, domain.OrderItemEvent{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	ev := domain.OrderDeleted{OrderID: orderID, DeletedItems: deleted}
	if err := s.publish(ctx, ev); err != nil {
		return &apperr.BusError{Err: err}
	}

	return s.repo.Delete(ctx, orderID)
}

func (s *CommandService) RestoreAll(ctx context.Context) error {
	if err := s.repo.RestoreAll(ctx); err != nil {
		return err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return nil
}

// DeleteAll hard-deletes every trashed order one at a time so each gets its
// compensating Deleted event, same as the single-order path. A publish
// failure stops the sweep; orders removed before it stay removed.
func (s *CommandService) DeleteAll(ctx context.Context) error {
	req := domain.FindAllRequest{Page: 1, PageSize: domain.MaxPageSize}
	for {
		trashed, _, err := s.queries.FindTrashed(ctx, req)
		if err != nil {
			return err
		}
		if len(trashed) == 0 {
			break
		}
		for _, o := range trashed {
			if err := s.hardDelete(ctx, o.ID); err != nil {
				return err
			}
		}
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return nil
}

func (s *CommandService) publish(ctx context.Context, ev domain.OrderEvent) error {
	payload, err := domain.MarshalOrderEvent(ev)
	if err != nil {
		return err
	}
	return s.bus.Publish(ctx, domain.TopicOrderEvents, domain.PartitionKey(ev.EventOrderID()), payload)
}

func eventItems(records []ItemRecord) []domain.OrderItemEvent {
	out := make([]domain.OrderItemEvent, 0, len(records))
	for _, r := range records {
		out = append(out, domain.OrderItemEvent{ProductID: r.ProductID, Quantity: r.Quantity})
	}
	return out
}

// diffItems derives per-product quantity deltas between the stored and the
// requested item sets. Iteration follows the request order first, then the
// stored order for removed lines, so emitted updates are deterministic.
func diffItems(old []domain.OrderItem, next []ItemRecord) []domain.OrderItemUpdateEvent {
	oldQty := make(map[int]int, len(old))
	for _, it := range old {
		oldQty[it.ProductID] = it.Quantity
	}
	nextSeen := make(map[int]bool, len(next))

	var updates []domain.OrderItemUpdateEvent
	for _, it := range next {
		nextSeen[it.ProductID] = true
		if prev := oldQty[it.ProductID]; prev != it.Quantity {
			updates = append(updates, domain.OrderItemUpdateEvent{
				ProductID:   it.ProductID,
				OldQuantity: prev,
				NewQuantity: it.Quantity,
			})
		}
	}
	for _, it := range old {
		if !nextSeen[it.ProductID] {
			updates = append(updates, domain.OrderItemUpdateEvent{
				ProductID:   it.ProductID,
				OldQuantity: it.Quantity,
				NewQuantity: 0,
			})
		}
	}
	return updates
}
