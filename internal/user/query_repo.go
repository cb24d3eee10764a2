package user

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
)

type QueryRepo struct {
	DB *pgxpool.Pool
}

func (r *QueryRepo) FindAll(ctx context.Context, req domain.FindAllRequest) ([]domain.User, int, error) {
	req.Normalize()
	return r.list(ctx, req, "")
}

func (r *QueryRepo) FindActive(ctx context.Context, req domain.FindAllRequest) ([]domain.User, int, error) {
	req.Normalize()
	return r.list(ctx, req, "AND deleted_at IS NULL")
}

func (r *QueryRepo) FindTrashed(ctx context.Context, req domain.FindAllRequest) ([]domain.User, int, error) {
	req.Normalize()
	return r.list(ctx, req, "AND deleted_at IS NOT NULL")
}

func (r *QueryRepo) list(ctx context.Context, req domain.FindAllRequest, scope string) ([]domain.User, int, error) {
	search := "%" + req.Search + "%"

	var total int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM users
		WHERE email ILIKE $1 `+scope,
		search,
	).Scan(&total)
	if err != nil {
		return nil, 0, apperr.FromPg("count users", err)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT `+userCols+` FROM users
		WHERE email ILIKE $1 `+scope+`
		ORDER BY created_at DESC, user_id DESC
		LIMIT $2 OFFSET $3`,
		search, req.PageSize, req.Offset(),
	)
	if err != nil {
		return nil, 0, apperr.FromPg("list users", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt); err != nil {
			return nil, 0, apperr.FromPg("scan user", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.FromPg("list users", err)
	}
	return out, total, nil
}

func (r *QueryRepo) FindByID(ctx context.Context, userID int) (domain.User, error) {
	var u domain.User
	err := r.DB.QueryRow(ctx, `
		SELECT `+userCols+` FROM users WHERE user_id = $1`,
		userID,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		return domain.User{}, apperr.FromPg("find user", err)
	}
	return u, nil
}
