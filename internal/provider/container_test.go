package provider

import (
	"fmt"
	"testing"
	"time"

	"github.com/account-activation/internal/config"
	"github.com/account-activation/internal/constants"
	"github.com/account-activation/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:provider_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			BcryptCost:     bcrypt.MinCost,
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, MaxLength: 72},
		},
		Email: config.EmailConfig{Driver: constants.EmailDriverLog},
		Activation: config.ActivationConfig{
			CodeTTLSeconds:     60,
			AutoSendOnRegister: true,
			JobTimeoutSeconds:  5,
		},
	}
}

func TestNewContainerRequiresDependencies(t *testing.T) {
	if _, err := NewContainer(nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := NewContainer(testConfig(), nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}

func TestNewContainerRejectsUnknownEmailDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Email.Driver = "carrier-pigeon"
	if _, err := NewContainer(cfg, openTestDB(t)); err == nil {
		t.Fatalf("expected error for unsupported email driver")
	}
}

func TestContainerUsesInlineDispatcherWhenQueueDisabled(t *testing.T) {
	c, err := NewContainer(testConfig(), openTestDB(t))
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if c.QueueClient != nil {
		t.Fatalf("queue client should not be created when queue disabled")
	}
	if c.InlineDispatcher == nil || c.Dispatcher() != c.InlineDispatcher {
		t.Fatalf("expected inline dispatcher to be active")
	}
	if c.Cache.Enabled() {
		t.Fatalf("redis should be disabled by default")
	}
}

func TestContainerRegisterIssuesCodeInBackground(t *testing.T) {
	c, err := NewContainer(testConfig(), openTestDB(t))
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	account, err := c.AccountService.Register(t.Context(), "flow@example.com", "password123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := c.InlineDispatcher.Stop(t.Context()); err != nil {
		t.Fatalf("stop dispatcher failed: %v", err)
	}

	ok, err := c.ActivationCodeRepo.HasCode(t.Context(), account.ID)
	if err != nil {
		t.Fatalf("has code failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected activation code to be issued after register")
	}
}
