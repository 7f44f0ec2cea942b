package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/account-activation/internal/config"
	"github.com/account-activation/internal/models"
	"github.com/account-activation/internal/queue"
	"github.com/account-activation/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingDispatcher struct {
	mu       sync.Mutex
	payloads []queue.ActivationCodePayload
	err      error
}

func (d *recordingDispatcher) DispatchActivationCode(_ context.Context, payload queue.ActivationCodePayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.payloads = append(d.payloads, payload)
	return nil
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.payloads)
}

type sentMessage struct {
	to   string
	code string
	ttl  time.Duration
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) SendActivationCode(_ context.Context, to, code string, ttl time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{to: to, code: code, ttl: ttl})
	return nil
}

func (n *recordingNotifier) last(t *testing.T) sentMessage {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		t.Fatalf("expected a notification to be sent")
	}
	return n.sent[len(n.sent)-1]
}

type serviceFixture struct {
	db         *gorm.DB
	cfg        *config.Config
	accounts   *repository.GormAccountRepository
	codes      *repository.GormActivationCodeRepository
	svc        *AccountService
	delivery   *ActivationDeliveryService
	dispatcher *recordingDispatcher
	notifier   *recordingNotifier
	clock      *fakeClock
}

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			BcryptCost:     bcrypt.MinCost,
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, MaxLength: 72},
		},
		Activation: config.ActivationConfig{
			CodeTTLSeconds:     60,
			AutoSendOnRegister: true,
		},
	}
}

func setupServiceTest(t *testing.T, mutate func(cfg *config.Config)) *serviceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := models.OpenDB(models.DriverSQLite, dsn, models.DBPoolConfig{MaxOpenConns: 1, MaxIdleConns: 1}, logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() { _ = models.CloseDB(db) })

	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}
	clock := newFakeClock()
	accounts := repository.NewAccountRepository(db)
	codes := repository.NewActivationCodeRepository(db)
	dispatcher := &recordingDispatcher{}
	notifier := &recordingNotifier{}

	svc := NewAccountService(cfg, accounts, codes, NewBcryptHasher(cfg.Security.BcryptCost), dispatcher)
	svc.SetClock(clock.Now)
	delivery := NewActivationDeliveryService(cfg.Activation, accounts, codes, notifier)
	delivery.SetClock(clock.Now)

	return &serviceFixture{
		db:         db,
		cfg:        cfg,
		accounts:   accounts,
		codes:      codes,
		svc:        svc,
		delivery:   delivery,
		dispatcher: dispatcher,
		notifier:   notifier,
		clock:      clock,
	}
}

// issueCode 执行一次后台下发并返回发送给用户的激活码
func (f *serviceFixture) issueCode(t *testing.T, account *models.Account) string {
	t.Helper()
	outcome, err := f.delivery.Deliver(t.Context(), queue.ActivationCodePayload{AccountID: account.ID, Email: account.Email})
	if err != nil || outcome != DeliverySent {
		t.Fatalf("deliver failed: outcome=%s err=%v", outcome, err)
	}
	return f.notifier.last(t).code
}

func (f *serviceFixture) register(t *testing.T, email, password string) *models.Account {
	t.Helper()
	account, err := f.svc.Register(t.Context(), email, password)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return account
}
