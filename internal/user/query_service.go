package user

import (
	"context"

	"github.com/andikarachman/go-shop-events/internal/domain"
	"github.com/andikarachman/go-shop-events/internal/redisx"
)

// page is the cached shape of one list query result. Password hashes are
// excluded from the wire form by the model's json tag, so cached pages never
// carry them.
type page struct {
	Users []domain.User `json:"users"`
	Total int           `json:"total"`
}

type QueryService struct {
	repo  QueryStore
	cache redisx.Cache
}

func NewQueryService(repo QueryStore, cache redisx.Cache) *QueryService {
	return &QueryService{repo: repo, cache: cache}
}

func (s *QueryService) FindAll(ctx context.Context, req domain.FindAllRequest) ([]domain.User, int, error) {
	return s.cached(ctx, "find_all", req, s.repo.FindAll)
}

func (s *QueryService) FindActive(ctx context.Context, req domain.FindAllRequest) ([]domain.User, int, error) {
	return s.cached(ctx, "find_active", req, s.repo.FindActive)
}

func (s *QueryService) FindTrashed(ctx context.Context, req domain.FindAllRequest) ([]domain.User, int, error) {
	return s.cached(ctx, "find_trashed", req, s.repo.FindTrashed)
}

func (s *QueryService) cached(ctx context.Context, op string, req domain.FindAllRequest,
	fetch func(context.Context, domain.FindAllRequest) ([]domain.User, int, error)) ([]domain.User, int, error) {
	req.Normalize()
	key := redisx.KeyList(cacheEntity, op, req.Page, req.PageSize, req.Search)

	var p page
	if s.cache.Get(ctx, key, &p) {
		return p.Users, p.Total, nil
	}

	users, total, err := fetch(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	s.cache.Set(ctx, key, page{Users: users, Total: total}, redisx.TTLQuery)
	return users, total, nil
}

func (s *QueryService) FindByID(ctx context.Context, userID int) (domain.User, error) {
	key := redisx.KeyFindByID(cacheEntity, userID)

	var u domain.User
	if s.cache.Get(ctx, key, &u) {
		return u, nil
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	s.cache.Set(ctx, key, u, redisx.TTLQuery)
	return u, nil
}
