package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/account-activation/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repository_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := models.OpenDB(models.DriverSQLite, dsn, models.DBPoolConfig{MaxOpenConns: 1, MaxIdleConns: 1}, logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() { _ = models.CloseDB(db) })
	return db
}

func createTestAccount(t *testing.T, repo *GormAccountRepository, email string) *models.Account {
	t.Helper()
	account := &models.Account{Email: email, PasswordHash: "hash"}
	if err := repo.Create(t.Context(), account); err != nil {
		t.Fatalf("create account failed: %v", err)
	}
	return account
}
