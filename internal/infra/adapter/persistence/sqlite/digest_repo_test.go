package sqlite_test

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"district-digest/internal/domain/entity"
	"district-digest/internal/infra/adapter/persistence/sqlite"
)

// ─────────────────────────────────────────────
// ヘルパ：行生成
// ─────────────────────────────────────────────
func digestRow(d *entity.Digest) *sqlmock.Rows {
	payload, _ := json.Marshal(d.Articles)
	return sqlmock.NewRows([]string{
		"id", "district", "digest_date", "provider",
		"is_mock", "article_count", "payload", "created_at",
	}).AddRow(
		d.ID, d.District, d.Date, d.Provider,
		d.IsMock, d.ArticleCount, payload, d.CreatedAt,
	)
}

func sampleDigest() *entity.Digest {
	return &entity.Digest{
		ID:           1,
		District:     "Guntur",
		Date:         "2025-03-14",
		Provider:     "currents",
		IsMock:       false,
		ArticleCount: 1,
		Articles: []entity.Article{
			{
				Title:           "Theft reported near Guntur bus stand",
				URL:             "https://example.com/a1",
				Category:        entity.CategoryTheft,
				Source:          entity.ArticleSource{Name: "Example News"},
				PublishedAt:     "2025-03-14T10:00:00Z",
				RelatedArticles: []entity.RelatedArticle{},
			},
		},
		CreatedAt: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

// ─────────────────────────────────────────────
// 1. Save
// ─────────────────────────────────────────────
func TestDigestRepo_Save(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	d := sampleDigest()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO digests")).
		WithArgs(d.District, d.Date, d.Provider, d.IsMock, 1, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	repo := sqlite.NewDigestRepo(db)
	id, err := repo.Save(context.Background(), d)
	if err != nil {
		t.Fatalf("Save err=%v", err)
	}
	if id != 7 {
		t.Fatalf("Save id=%d, want 7", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestDigestRepo_Save_InvalidDigest(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := sqlite.NewDigestRepo(db)
	_, err := repo.Save(context.Background(), &entity.Digest{District: "Nowhere", Date: "2025-03-14", Provider: "mock"})
	if err == nil {
		t.Fatal("expected validation error for unknown district")
	}
}

// ─────────────────────────────────────────────
// 2. FindByDistrictDate
// ─────────────────────────────────────────────
func TestDigestRepo_FindByDistrictDate(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleDigest()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id")).
		WithArgs("Guntur", "2025-03-14").
		WillReturnRows(digestRow(want))

	repo := sqlite.NewDigestRepo(db)
	got, err := repo.FindByDistrictDate(context.Background(), "Guntur", "2025-03-14")
	if err != nil {
		t.Fatalf("FindByDistrictDate err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("FindByDistrictDate mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestDigestRepo_FindByDistrictDate_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id")).
		WithArgs("Krishna", "2025-03-14").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "district", "digest_date", "provider",
			"is_mock", "article_count", "payload", "created_at",
		}))

	repo := sqlite.NewDigestRepo(db)
	_, err := repo.FindByDistrictDate(context.Background(), "Krishna", "2025-03-14")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("err=%v, want entity.ErrNotFound", err)
	}
}

// ─────────────────────────────────────────────
// 3. ListRecent / Count
// ─────────────────────────────────────────────
func TestDigestRepo_ListRecent(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	created := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "district", "digest_date", "provider", "is_mock", "article_count", "created_at",
	}).
		AddRow(int64(2), "Krishna", "2025-03-14", "mock", true, 2, created).
		AddRow(int64(1), "Guntur", "2025-03-13", "currents", false, 5, created.Add(-24*time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id")).
		WithArgs(20, 0).
		WillReturnRows(rows)

	repo := sqlite.NewDigestRepo(db)
	got, err := repo.ListRecent(context.Background(), 20, 0)
	if err != nil {
		t.Fatalf("ListRecent err=%v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListRecent len=%d, want 2", len(got))
	}
	if got[0].District != "Krishna" || got[1].District != "Guntur" {
		t.Fatalf("ListRecent order wrong: %s, %s", got[0].District, got[1].District)
	}
	if got[0].Articles != nil {
		t.Fatal("ListRecent must not populate Articles")
	}
}

func TestDigestRepo_Count(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM digests")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	repo := sqlite.NewDigestRepo(db)
	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count err=%v", err)
	}
	if n != 42 {
		t.Fatalf("Count=%d, want 42", n)
	}
}
