package repository

import (
	"context"

	"district-digest/internal/domain/entity"
)

// DigestRepository defines the persistence interface for fetched digests.
type DigestRepository interface {
	// Save stores a digest, replacing any existing digest for the same
	// (district, date) pair. Returns the digest ID.
	Save(ctx context.Context, digest *entity.Digest) (int64, error)

	// FindByDistrictDate retrieves the digest for a district and date.
	// Returns entity.ErrNotFound when no digest exists.
	FindByDistrictDate(ctx context.Context, district, date string) (*entity.Digest, error)

	// FindByID retrieves a digest by its ID.
	// Returns entity.ErrNotFound when no digest exists.
	FindByID(ctx context.Context, id int64) (*entity.Digest, error)

	// ListRecent retrieves digests ordered by creation time, newest first.
	// Uses LIMIT and OFFSET for pagination; Articles are not populated.
	ListRecent(ctx context.Context, limit, offset int) ([]*entity.Digest, error)

	// Count returns the total number of stored digests.
	Count(ctx context.Context) (int64, error)
}
