package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
	"github.com/andikarachman/go-shop-events/internal/redisx"
)

const cacheEntity = "product"

type CommandStore interface {
	Create(ctx context.Context, name string, price, stock int) (domain.Product, error)
	Update(ctx context.Context, productID int, name string, price, stock int) (domain.Product, error)
	IncreaseStock(ctx context.Context, productID, qty int) (domain.Product, error)
	DecreaseStock(ctx context.Context, productID, qty int) (domain.Product, error)
	Trash(ctx context.Context, productID int) (domain.Product, error)
	Restore(ctx context.Context, productID int) (domain.Product, error)
	Delete(ctx context.Context, productID int) error
	RestoreAll(ctx context.Context) error
	DeleteAll(ctx context.Context) error
}

type QueryStore interface {
	FindAll(ctx context.Context, req domain.FindAllRequest) ([]domain.Product, int, error)
	FindActive(ctx context.Context, req domain.FindAllRequest) ([]domain.Product, int, error)
	FindTrashed(ctx context.Context, req domain.FindAllRequest) ([]domain.Product, int, error)
	FindByID(ctx context.Context, productID int) (domain.Product, error)
}

type CommandService struct {
	repo     CommandStore
	cache    redisx.Cache
	validate *validator.Validate
}

func NewCommandService(repo CommandStore, cache redisx.Cache) *CommandService {
	return &CommandService{repo: repo, cache: cache, validate: validator.New()}
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

func (s *CommandService) Create(ctx context.Context, req *domain.CreateProductRequest) (domain.Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Product{}, validationError(err)
	}
	p, err := s.repo.Create(ctx, req.Name, req.Price, req.Stock)
	if err != nil {
		return domain.Product{}, err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return p, nil
}

func (s *CommandService) Update(ctx context.Context, req *domain.UpdateProductRequest) (domain.Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Product{}, validationError(err)
	}
	p, err := s.repo.Update(ctx, req.ProductID, req.Name, req.Price, req.Stock)
	if err != nil {
		return domain.Product{}, err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return p, nil
}

// IncreaseStock and DecreaseStock are the reconciliation entry points; every
// applied delta invalidates the product cache so readers converge promptly.
func (s *CommandService) IncreaseStock(ctx context.Context, productID, qty int) (domain.Product, error) {
	p, err := s.repo.IncreaseStock(ctx, productID, qty)
	if err != nil {
		return domain.Product{}, err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return p, nil
}

func (s *CommandService) DecreaseStock(ctx context.Context, productID, qty int) (domain.Product, error) {
	p, err := s.repo.DecreaseStock(ctx, productID, qty)
	if err != nil {
		return domain.Product{}, err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return p, nil
}

func (s *CommandService) Trash(ctx context.Context, productID int) (domain.Product, error) {
	p, err := s.repo.Trash(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return p, nil
}

func (s *CommandService) Restore(ctx context.Context, productID int) (domain.Product, error) {
	p, err := s.repo.Restore(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return p, nil
}

func (s *CommandService) Delete(ctx context.Context, productID int) error {
	if err := s.repo.Delete(ctx, productID); err != nil {
		return err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return nil
}

func (s *CommandService) RestoreAll(ctx context.Context) error {
	if err := s.repo.RestoreAll(ctx); err != nil {
		return err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return nil
}

func (s *CommandService) DeleteAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return nil
}
