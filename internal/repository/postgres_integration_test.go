//go:build integration
// +build integration

package repository

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/account-activation/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库，结构由 goose 迁移创建。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := models.OpenDB(models.DriverPostgres, dsn, models.DBPoolConfig{MaxOpenConns: 10}, logger.Silent)
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}
	if err := models.Migrate(context.Background(), db, models.DriverPostgres); err != nil {
		t.Fatalf("migrate postgres failed: %v", err)
	}
	if err := db.Exec("TRUNCATE activation_codes, accounts").Error; err != nil {
		t.Fatalf("truncate tables failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Exec("TRUNCATE activation_codes, accounts").Error
		_ = models.CloseDB(db)
	})
	return db
}

func TestPostgresDuplicateIdentityUsesUniqueIndex(t *testing.T) {
	repo := NewAccountRepository(setupPostgresIntegrationDB(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, &models.Account{Email: "pg@x.com", PasswordHash: "hash"})
		}()
	}
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, ErrDuplicateIdentity) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly one winner, got %d", success)
	}
}

func TestPostgresConcurrentIssueKeepsSingleCode(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	accounts := NewAccountRepository(db)
	codes := NewActivationCodeRepository(db)
	ctx := context.Background()

	account := &models.Account{Email: "pg-code@x.com", PasswordHash: "hash"}
	if err := accounts.Create(ctx, account); err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := codes.Issue(ctx, account.ID, time.Minute, time.Now()); err != nil {
				t.Errorf("issue failed: %v", err)
			}
		}()
	}
	wg.Wait()

	var count int64
	if err := db.Model(&models.ActivationCode{}).Where("account_id = ?", account.ID).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one live code, got %d", count)
	}
}

func TestPostgresConcurrentMarkActiveSingleFlip(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	accounts := NewAccountRepository(db)
	ctx := context.Background()

	account := &models.Account{Email: "pg-active@x.com", PasswordHash: "hash"}
	if err := accounts.Create(ctx, account); err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		changed int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := accounts.MarkActive(ctx, account.ID, time.Now())
			if err != nil {
				t.Errorf("mark active failed: %v", err)
				return
			}
			if ok {
				mu.Lock()
				changed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if changed != 1 {
		t.Fatalf("expected exactly one effective activation, got %d", changed)
	}
}
