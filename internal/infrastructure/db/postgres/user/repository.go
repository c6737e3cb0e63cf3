package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"file-storage-api/internal/domain/apperr"
	"file-storage-api/internal/domain/user"
	"file-storage-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DBTX
}

func NewRepository(db postgres.DBTX) user.Repository {
	return &Repository{db: db}
}

func scan(row pgx.Row) (*user.User, error) {
	u := new(User)
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,

		&u.CreatedAt,
	); err != nil {
		return nil, err
	}

	return fromDBModel(u), nil
}

func (r *Repository) FetchUsers(ctx context.Context) (user.Users, error) {
	rows, err := r.db.Query(ctx, SelectUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var us Users
	for rows.Next() {
		u := new(User)

		if err = rows.Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.PasswordHash,
			&u.Role,

			&u.CreatedAt,
		); err != nil {
			return nil, err
		}

		us = append(us, u)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&us), nil
}

func (r *Repository) FetchUserByID(ctx context.Context, id user.ID) (*user.User, error) {
	u, err := scan(r.db.QueryRow(ctx, SelectUserByID, int64(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *Repository) FetchUserByUsername(ctx context.Context, username string) (*user.User, error) {
	u, err := scan(r.db.QueryRow(ctx, SelectUserByUsername, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *Repository) CreateUser(ctx context.Context, req user.User) (*user.User, error) {
	u, err := scan(r.db.QueryRow(
		ctx,
		InsertUser,
		req.Username, req.Email, req.PasswordHash, req.Role.String(),
	))
	if err != nil {
		if postgres.IsPgUniqueViolation(err) {
			return nil, apperr.ErrConflict
		}
		return nil, err
	}

	return u, nil
}

func (r *Repository) UpdateRole(ctx context.Context, id user.ID, role user.Role) (*user.User, error) {
	u, err := scan(r.db.QueryRow(ctx, UpdateUserRole, role.String(), int64(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *Repository) DeleteUser(ctx context.Context, id user.ID) error {
	tag, err := r.db.Exec(ctx, DeleteUserByID, int64(id))
	if err != nil {
		if postgres.IsPgForeignKeyViolation(err) {
			return apperr.ErrConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

func (r *Repository) LockUser(ctx context.Context, id user.ID) error {
	var locked int64
	if err := r.db.QueryRow(ctx, LockUserByID, int64(id)).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.ErrNotFound
		}
		return err
	}

	return nil
}
