package sqlite_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"district-digest/internal/domain/entity"
	"district-digest/internal/infra/adapter/persistence/sqlite"
)

func TestUserRepo_FindByUsername(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id")).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}).
			AddRow(int64(1), "admin", "$2a$10$hash", "admin", created))

	repo := sqlite.NewUserRepo(db)
	got, err := repo.FindByUsername(context.Background(), "admin")
	if err != nil {
		t.Fatalf("FindByUsername err=%v", err)
	}
	if got.Username != "admin" || got.Role != "admin" {
		t.Fatalf("FindByUsername got=%+v", got)
	}
}

func TestUserRepo_FindByUsername_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}))

	repo := sqlite.NewUserRepo(db)
	_, err := repo.FindByUsername(context.Background(), "ghost")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("err=%v, want entity.ErrNotFound", err)
	}
}

func TestUserRepo_Upsert(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("admin", "$2a$10$hash", "admin").
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := sqlite.NewUserRepo(db)
	err := repo.Upsert(context.Background(), &entity.User{Username: "admin", PasswordHash: "$2a$10$hash", Role: "admin"})
	if err != nil {
		t.Fatalf("Upsert err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
