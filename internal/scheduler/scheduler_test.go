package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udyogmart/udyogmart/internal/clock"
	"github.com/udyogmart/udyogmart/internal/config"
	escrowdomain "github.com/udyogmart/udyogmart/internal/escrow/domain"
	escrowrepository "github.com/udyogmart/udyogmart/internal/escrow/repository"
	"github.com/udyogmart/udyogmart/internal/metrics"
	notificationdomain "github.com/udyogmart/udyogmart/internal/notification/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []notificationdomain.EventKind
	users  []snowflake.ID
}

func (d *recordingDispatcher) Dispatch(userID snowflake.ID, event notificationdomain.EventKind, payload map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	d.users = append(d.users, userID)
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

func setupScheduler(t *testing.T, clk clock.Clock, policy config.EscrowPolicy) (*Scheduler, *gorm.DB, *snowflake.Node, *recordingDispatcher) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&escrowdomain.EscrowAccount{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	notifier := &recordingDispatcher{}
	sched, err := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		Clock:      clk,
		EscrowRepo: escrowrepository.Provide(),
		Notifier:   notifier,
		Recorder:   metrics.NewNopRecorder(),
		Policy:     config.NewStaticEscrowPolicyHolder(policy),
		AppConfig:  config.Config{},
	})
	require.NoError(t, err)

	return sched, db, node, notifier
}

func seedPending(t *testing.T, db *gorm.DB, node *snowflake.Node, expiresAt time.Time) *escrowdomain.EscrowAccount {
	t.Helper()
	account := &escrowdomain.EscrowAccount{
		ID:         node.Generate(),
		OrderID:    node.Generate(),
		BuyerID:    node.Generate(),
		SupplierID: node.Generate(),
		Amount:     1000,
		Currency:   "INR",
		State:      escrowdomain.StatePending,
		CreatedAt:  expiresAt.AddDate(0, 0, -30),
		UpdatedAt:  expiresAt.AddDate(0, 0, -30),
		ExpiresAt:  expiresAt,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func TestSweepNotifiesOnceAndNeverTransitions(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	sched, db, node, notifier := setupScheduler(t, clk, config.DefaultEscrowPolicy())
	ctx := context.Background()

	account := seedPending(t, db, node, clk.Now().AddDate(0, 0, 10))

	// Not expired yet; nothing to report.
	require.NoError(t, sched.SweepExpired(ctx))
	assert.Equal(t, 0, notifier.count())

	clk.Advance(11 * 24 * time.Hour)

	require.NoError(t, sched.SweepExpired(ctx))
	assert.Equal(t, 2, notifier.count(), "buyer and supplier each notified")
	assert.Equal(t, notificationdomain.EventEscrowExpired, notifier.events[0])
	assert.Equal(t, account.BuyerID, notifier.users[0])
	assert.Equal(t, account.SupplierID, notifier.users[1])

	var reloaded escrowdomain.EscrowAccount
	require.NoError(t, db.First(&reloaded, "id = ?", account.ID).Error)
	assert.Equal(t, escrowdomain.StatePending, reloaded.State, "sweep observes, never transitions")
	require.NotNil(t, reloaded.ExpiryNotifiedAt)

	// The flag makes the sweep idempotent.
	require.NoError(t, sched.SweepExpired(ctx))
	assert.Equal(t, 2, notifier.count())
}

func TestSweepHonoursNotifyPolicy(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	policy := config.DefaultEscrowPolicy()
	policy.NotifyOnExpiry = false
	sched, db, node, notifier := setupScheduler(t, clk, policy)
	ctx := context.Background()

	account := seedPending(t, db, node, clk.Now().Add(-time.Hour))

	require.NoError(t, sched.SweepExpired(ctx))
	assert.Equal(t, 0, notifier.count())

	// Still flagged so a later policy flip does not replay old expiries.
	var reloaded escrowdomain.EscrowAccount
	require.NoError(t, db.First(&reloaded, "id = ?", account.ID).Error)
	assert.NotNil(t, reloaded.ExpiryNotifiedAt)
}

func TestSweepBatchLimit(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	sched, db, node, notifier := setupScheduler(t, clk, config.DefaultEscrowPolicy())
	sched.batchSize = 3
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedPending(t, db, node, clk.Now().Add(-time.Duration(i+1)*time.Hour))
	}

	require.NoError(t, sched.SweepExpired(ctx))
	assert.Equal(t, 6, notifier.count(), "three accounts, two parties each")

	require.NoError(t, sched.SweepExpired(ctx))
	assert.Equal(t, 10, notifier.count(), "remaining two picked up next pass")
}
