package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("file:models_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
}

func TestNormalizeDriver(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: DriverSQLite},
		{in: " SQLite ", want: DriverSQLite},
		{in: "postgresql", want: DriverPostgres},
		{in: "Postgres", want: DriverPostgres},
		{in: "mysql", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := NormalizeDriver(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.in)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("unexpected result: got=%q err=%v", got, err)
			}
		})
	}
}

func TestSQLiteMigrateCreatesTables(t *testing.T) {
	db, err := OpenDB(DriverSQLite, openTestDB(t), DBPoolConfig{MaxOpenConns: 1}, logger.Silent)
	if err != nil {
		t.Fatalf("open db failed: %v", err)
	}
	t.Cleanup(func() { _ = CloseDB(db) })

	if err := Migrate(context.Background(), db, "sqlite"); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	for _, table := range []string{"accounts", "activation_codes"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}
	if err := Ping(context.Background(), db); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestAccountBeforeCreateAssignsID(t *testing.T) {
	db, err := OpenDB(DriverSQLite, openTestDB(t), DBPoolConfig{}, logger.Silent)
	if err != nil {
		t.Fatalf("open db failed: %v", err)
	}
	t.Cleanup(func() { _ = CloseDB(db) })
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	account := &Account{Email: "a@x.com", PasswordHash: "hash"}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("create account failed: %v", err)
	}
	if len(account.ID) != 36 {
		t.Fatalf("expected uuid id, got %q", account.ID)
	}
	if account.IsActive {
		t.Fatalf("new account should be inactive")
	}
}

func TestRunGooseMigrationsPropagatesError(t *testing.T) {
	prev := gooseUpContext
	t.Cleanup(func() { gooseUpContext = prev })

	sentinel := errors.New("boom")
	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return sentinel
	}
	err := runGooseMigrations(context.Background(), nil)
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
	if gotDir != "." {
		t.Fatalf("unexpected migration dir: %q", gotDir)
	}
}

func TestOpenDBCreatesSQLiteDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	db, err := OpenDB(DriverSQLite, filepath.Join(dir, "accounts.db"), DBPoolConfig{}, logger.Silent)
	if err != nil {
		t.Fatalf("open file db failed: %v", err)
	}
	t.Cleanup(func() { _ = CloseDB(db) })
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("sqlite dir should exist: %v", err)
	}
}
