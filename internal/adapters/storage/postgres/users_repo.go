package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"pet-catalog/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, created_at)
		VALUES ($1,$2,$3)
	`, u.ID, u.Username, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create user: %w", err)
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, created_at
		FROM users
		WHERE id = $1
	`, id)

	var u users.User
	if err := row.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, false, nil
		}
		return users.User{}, false, fmt.Errorf("postgres: get user: %w", err)
	}
	return u, true, nil
}
