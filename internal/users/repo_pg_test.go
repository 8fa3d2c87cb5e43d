package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoUpsertLowercasesEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("INSERT INTO users").
		WithArgs("google:123", "ada@example.com", "Ada Lovelace", "https://example.com/a.png", "AL", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Upsert(context.Background(), UserProfile{
		UID:         "google:123",
		Email:       "Ada@Example.com",
		DisplayName: "Ada Lovelace",
		PhotoURL:    "https://example.com/a.png",
		Initials:    "AL",
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByUIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT uid").
		WithArgs("google:missing").
		WillReturnRows(sqlmock.NewRows([]string{"uid", "email", "display_name", "photo_url", "initials", "password_hash", "created_at", "last_login_at"}))

	_, err = repo.GetByUID(context.Background(), "google:missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGRepoGetByEmailScansNullables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"uid", "email", "display_name", "photo_url", "initials", "password_hash", "created_at", "last_login_at"}).
		AddRow("demo-aux", nil, "Demo Shopper", "", nil, nil, now, now)
	mock.ExpectQuery("SELECT uid").
		WithArgs("demo@example.com").
		WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "Demo@Example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.UID != "demo-aux" || user.Email != "" || user.Initials != "" {
		t.Fatalf("user = %#v", user)
	}
}

func TestPGRepoTouchLastLoginNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("UPDATE users SET last_login_at").
		WithArgs("google:missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.TouchLastLogin(context.Background(), "google:missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
