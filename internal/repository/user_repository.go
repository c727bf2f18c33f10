package repository

import (
	"context"

	"district-digest/internal/domain/entity"
)

// UserRepository defines the persistence interface for stored accounts.
type UserRepository interface {
	// FindByUsername retrieves a user by username.
	// Returns entity.ErrNotFound when the user does not exist.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// Upsert creates the user or, when the username already exists, updates
	// the password hash and role in place. Used by the startup admin seed.
	Upsert(ctx context.Context, user *entity.User) error
}
