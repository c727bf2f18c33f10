package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"district-digest/internal/domain/entity"
	"district-digest/internal/repository"
)

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) repository.UserRepository {
	return &UserRepo{db: db}
}

func (repo *UserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	const query = `
SELECT id, username, password_hash, role, created_at
FROM users
WHERE username = $1
LIMIT 1`

	var user entity.User
	err := repo.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("FindByUsername: %w", err)
	}
	return &user, nil
}

func (repo *UserRepo) Upsert(ctx context.Context, user *entity.User) error {
	const query = `
INSERT INTO users (username, password_hash, role)
VALUES ($1, $2, $3)
ON CONFLICT (username) DO UPDATE SET
    password_hash = EXCLUDED.password_hash,
    role          = EXCLUDED.role`

	if _, err := repo.db.ExecContext(ctx, query, user.Username, user.PasswordHash, user.Role); err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}
