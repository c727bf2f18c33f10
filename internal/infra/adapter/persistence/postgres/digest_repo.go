package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"district-digest/internal/domain/entity"
	"district-digest/internal/repository"
)

type DigestRepo struct{ db *sql.DB }

func NewDigestRepo(db *sql.DB) repository.DigestRepository {
	return &DigestRepo{db: db}
}

// Save upserts the digest keyed on (district, digest_date). The article
// payload is stored as JSONB.
func (repo *DigestRepo) Save(ctx context.Context, digest *entity.Digest) (int64, error) {
	if err := digest.Validate(); err != nil {
		return 0, fmt.Errorf("Save: %w", err)
	}

	payload, err := json.Marshal(digest.Articles)
	if err != nil {
		return 0, fmt.Errorf("Save: marshal payload: %w", err)
	}

	const query = `
INSERT INTO digests (district, digest_date, provider, is_mock, article_count, payload)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (district, digest_date) DO UPDATE SET
    provider      = EXCLUDED.provider,
    is_mock       = EXCLUDED.is_mock,
    article_count = EXCLUDED.article_count,
    payload       = EXCLUDED.payload,
    created_at    = now()
RETURNING id`

	var id int64
	err = repo.db.QueryRowContext(ctx, query,
		digest.District, digest.Date, digest.Provider,
		digest.IsMock, len(digest.Articles), payload,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Save: %w", err)
	}
	return id, nil
}

func (repo *DigestRepo) FindByDistrictDate(ctx context.Context, district, date string) (*entity.Digest, error) {
	const query = `
SELECT id, district, digest_date, provider, is_mock, article_count, payload, created_at
FROM digests
WHERE district = $1 AND digest_date = $2
LIMIT 1`
	return scanDigest(repo.db.QueryRowContext(ctx, query, district, date))
}

func (repo *DigestRepo) FindByID(ctx context.Context, id int64) (*entity.Digest, error) {
	const query = `
SELECT id, district, digest_date, provider, is_mock, article_count, payload, created_at
FROM digests
WHERE id = $1
LIMIT 1`
	return scanDigest(repo.db.QueryRowContext(ctx, query, id))
}

func scanDigest(row *sql.Row) (*entity.Digest, error) {
	var digest entity.Digest
	var payload []byte
	err := row.Scan(
		&digest.ID, &digest.District, &digest.Date, &digest.Provider,
		&digest.IsMock, &digest.ArticleCount, &payload, &digest.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan digest: %w", err)
	}

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &digest.Articles); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
	}
	return &digest, nil
}

// ListRecent returns digests without their article payload, newest first.
func (repo *DigestRepo) ListRecent(ctx context.Context, limit, offset int) ([]*entity.Digest, error) {
	const query = `
SELECT id, district, digest_date, provider, is_mock, article_count, created_at
FROM digests
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

	rows, err := repo.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	digests := make([]*entity.Digest, 0, limit)
	for rows.Next() {
		var digest entity.Digest
		err := rows.Scan(
			&digest.ID, &digest.District, &digest.Date, &digest.Provider,
			&digest.IsMock, &digest.ArticleCount, &digest.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ListRecent: Scan: %w", err)
		}
		digests = append(digests, &digest)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRecent: rows.Err: %w", err)
	}
	return digests, nil
}

func (repo *DigestRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM digests`).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}
