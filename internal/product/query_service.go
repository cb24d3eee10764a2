package product

import (
	"context"

	"github.com/andikarachman/go-shop-events/internal/domain"
	"github.com/andikarachman/go-shop-events/internal/redisx"
)

// page is the cached shape of one list query result.
type page struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

// QueryService mirrors the order-side read path: cache hit returns the
// cached page, miss refills from Postgres with a bounded TTL.
type QueryService struct {
	repo  QueryStore
	cache redisx.Cache
}

func NewQueryService(repo QueryStore, cache redisx.Cache) *QueryService {
	return &QueryService{repo: repo, cache: cache}
}

func (s *QueryService) FindAll(ctx context.Context, req domain.FindAllRequest) ([]domain.Product, int, error) {
	return s.cached(ctx, "find_all", req, s.repo.FindAll)
}

func (s *QueryService) FindActive(ctx context.Context, req domain.FindAllRequest) ([]domain.Product, int, error) {
	return s.cached(ctx, "find_active", req, s.repo.FindActive)
}

func (s *QueryService) FindTrashed(ctx context.Context, req domain.FindAllRequest) ([]domain.Product, int, error) {
	return s.cached(ctx, "find_trashed", req, s.repo.FindTrashed)
}

func (s *QueryService) cached(ctx context.Context, op string, req domain.FindAllRequest,
	fetch func(context.Context, domain.FindAllRequest) ([]domain.Product, int, error)) ([]domain.Product, int, error) {
	req.Normalize()
	key := redisx.KeyList(cacheEntity, op, req.Page, req.PageSize, req.Search)

	var p page
	if s.cache.Get(ctx, key, &p) {
		return p.Products, p.Total, nil
	}

	products, total, err := fetch(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	s.cache.Set(ctx, key, page{Products: products, Total: total}, redisx.TTLQuery)
	return products, total, nil
}

func (s *QueryService) FindByID(ctx context.Context, productID int) (domain.Product, error) {
	key := redisx.KeyFindByID(cacheEntity, productID)

	var p domain.Product
	if s.cache.Get(ctx, key, &p) {
		return p, nil
	}

	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	s.cache.Set(ctx, key, p, redisx.TTLQuery)
	return p, nil
}
