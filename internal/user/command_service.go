package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
	"github.com/andikarachman/go-shop-events/internal/redisx"
)

const cacheEntity = "user"

type CommandStore interface {
	Create(ctx context.Context, firstName, lastName, email, passwordHash string) (domain.User, error)
	Update(ctx context.Context, userID int, firstName, lastName, email string) (domain.User, error)
	Trash(ctx context.Context, userID int) (domain.User, error)
	Restore(ctx context.Context, userID int) (domain.User, error)
	Delete(ctx context.Context, userID int) error
	RestoreAll(ctx context.Context) error
	DeleteAll(ctx context.Context) error
}

type QueryStore interface {
	FindAll(ctx context.Context, req domain.FindAllRequest) ([]domain.User, int, error)
	FindActive(ctx context.Context, req domain.FindAllRequest) ([]domain.User, int, error)
	FindTrashed(ctx context.Context, req domain.FindAllRequest) ([]domain.User, int, error)
	FindByID(ctx context.Context, userID int) (domain.User, error)
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

// Create stores the password as a bcrypt hash; the plaintext never reaches
// the repository.
func (s *CommandService) Create(ctx context.Context, req *domain.CreateUserRequest) (domain.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.User{}, validationError(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.repo.Create(ctx, req.FirstName, req.LastName, req.Email, string(hash))
	if err != nil {
		return domain.User{}, err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return u, nil
}

func (s *CommandService) Update(ctx context.Context, req *domain.UpdateUserRequest) (domain.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.User{}, validationError(err)
	}
	u, err := s.repo.Update(ctx, req.UserID, req.FirstName, req.LastName, req.Email)
	if err != nil {
		return domain.User{}, err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return u, nil
}

func (s *CommandService) Trash(ctx context.Context, userID int) (domain.User, error) {
	u, err := s.repo.Trash(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return u, nil
}

func (s *CommandService) Restore(ctx context.Context, userID int) (domain.User, error) {
	u, err := s.repo.Restore(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	s.cache.DelPrefix(ctx, redisx.Prefix(cacheEntity))
	return u, nil
}

func (s *CommandService) Delete(ctx context.Context, userID int) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
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
