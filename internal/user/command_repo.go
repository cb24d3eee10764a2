package user

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
)

type CommandRepo struct {
	DB *pgxpool.Pool
}

const userCols = `user_id, firstname, lastname, email, password, created_at, updated_at, deleted_at`

func (r *CommandRepo) Create(ctx context.Context, firstName, lastName, email, passwordHash string) (domain.User, error) {
	var u domain.User
	err := r.DB.QueryRow(ctx, `
		INSERT INTO users (firstname, lastname, email, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING `+userCols,
		firstName, lastName, email, passwordHash,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		return domain.User{}, apperr.FromPg("create user", err)
	}
	zap.L().Info("user created", zap.Int("user_id", u.ID), zap.String("email", u.Email))
	return u, nil
}

func (r *CommandRepo) Update(ctx context.Context, userID int, firstName, lastName, email string) (domain.User, error) {
	var u domain.User
	err := r.DB.QueryRow(ctx, `
		UPDATE users
		SET firstname = $2, lastname = $3, email = $4, updated_at = now()
		WHERE user_id = $1 AND deleted_at IS NULL
		RETURNING `+userCols,
		userID, firstName, lastName, email,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		return domain.User{}, apperr.FromPg("update user", err)
	}
	return u, nil
}

func (r *CommandRepo) Trash(ctx context.Context, userID int) (domain.User, error) {
	var u domain.User
	err := r.DB.QueryRow(ctx, `
		UPDATE users
		SET deleted_at = now(), updated_at = now()
		WHERE user_id = $1 AND deleted_at IS NULL
		RETURNING `+userCols,
		userID,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		return domain.User{}, apperr.FromPg("trash user", err)
	}
	return u, nil
}

func (r *CommandRepo) Restore(ctx context.Context, userID int) (domain.User, error) {
	var u domain.User
	err := r.DB.QueryRow(ctx, `
		UPDATE users
		SET deleted_at = NULL, updated_at = now()
		WHERE user_id = $1 AND deleted_at IS NOT NULL
		RETURNING `+userCols,
		userID,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		return domain.User{}, apperr.FromPg("restore user", err)
	}
	return u, nil
}

func (r *CommandRepo) Delete(ctx context.Context, userID int) error {
	ct, err := r.DB.Exec(ctx, `
		DELETE FROM users WHERE user_id = $1 AND deleted_at IS NOT NULL`,
		userID,
	)
	if err != nil {
		return apperr.FromPg("delete user", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.FromPg("delete user", pgx.ErrNoRows)
	}
	return nil
}

func (r *CommandRepo) RestoreAll(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE users SET deleted_at = NULL, updated_at = now() WHERE deleted_at IS NOT NULL`)
	if err != nil {
		return apperr.FromPg("restore all users", err)
	}
	return nil
}

func (r *CommandRepo) DeleteAll(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM users WHERE deleted_at IS NOT NULL`)
	if err != nil {
		return apperr.FromPg("delete all users", err)
	}
	return nil
}
