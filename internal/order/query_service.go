package order

import (
	"context"

	"github.com/andikarachman/go-shop-events/internal/domain"
	"github.com/andikarachman/go-shop-events/internal/redisx"
)

const cacheEntity = "order"

// page is the cached shape of one list query result.
type page struct {
	Orders []domain.Order `json:"orders"`
	Total  int            `json:"total"`
}

// QueryService reads through the cache: hit serves the cached page, miss goes
// to the query repository and refills with a bounded TTL. Staleness is capped
// by the TTL plus the command side's prefix invalidation.
type QueryService struct {
	repo  QueryStore
	items ItemStore
	cache redisx.Cache
}

func NewQueryService(repo QueryStore, items ItemStore, cache redisx.Cache) *QueryService {
	return &QueryService{repo: repo, items: items, cache: cache}
}

func (s *QueryService) FindAll(ctx context.Context, req domain.FindAllRequest) ([]domain.Order, int, error) {
	return s.cached(ctx, "find_all", req, s.repo.FindAll)
}

func (s *QueryService) FindActive(ctx context.Context, req domain.FindAllRequest) ([]domain.Order, int, error) {
	return s.cached(ctx, "find_active", req, s.repo.FindActive)
}

func (s *QueryService) FindTrashed(ctx context.Context, req domain.FindAllRequest) ([]domain.Order, int, error) {
	return s.cached(ctx, "find_trashed", req, s.repo.FindTrashed)
}

func (s *QueryService) cached(ctx context.Context, op string, req domain.FindAllRequest,
	fetch func(context.Context, domain.FindAllRequest) ([]domain.Order, int, error)) ([]domain.Order, int, error) {
	req.Normalize()
	key := redisx.KeyList(cacheEntity, op, req.Page, req.PageSize, req.Search)

	var p page
	if s.cache.Get(ctx, key, &p) {
		return p.Orders, p.Total, nil
	}

	orders, total, err := fetch(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	s.cache.Set(ctx, key, page{Orders: orders, Total: total}, redisx.TTLQuery)
	return orders, total, nil
}

func (s *QueryService) FindByID(ctx context.Context, orderID int) (domain.Order, error) {
	key := redisx.KeyFindByID(cacheEntity, orderID)

	var o domain.Order
	if s.cache.Get(ctx, key, &o) {
		return o, nil
	}

	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	s.cache.Set(ctx, key, o, redisx.TTLQuery)
	return o, nil
}

// FindItems returns the order's active lines; cheap enough that it reads the
// repository directly. Accepted staleness window: none (no cache layer here).
func (s *QueryService) FindItems(ctx context.Context, orderID int) ([]domain.OrderItem, error) {
	return s.items.FindByOrder(ctx, orderID)
}
