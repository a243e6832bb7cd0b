package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	auditdomain "github.com/udyogmart/udyogmart/internal/audit/domain"
	auditservice "github.com/udyogmart/udyogmart/internal/audit/service"
	"github.com/udyogmart/udyogmart/internal/cache"
	"github.com/udyogmart/udyogmart/internal/clock"
	"github.com/udyogmart/udyogmart/internal/config"
	escrowdomain "github.com/udyogmart/udyogmart/internal/escrow/domain"
	escrowrepository "github.com/udyogmart/udyogmart/internal/escrow/repository"
	escrowservice "github.com/udyogmart/udyogmart/internal/escrow/service"
	"github.com/udyogmart/udyogmart/internal/metrics"
	notificationdomain "github.com/udyogmart/udyogmart/internal/notification/domain"
	settlementdomain "github.com/udyogmart/udyogmart/internal/settlement/domain"
	supplierdomain "github.com/udyogmart/udyogmart/internal/supplier/domain"
	supplierrepository "github.com/udyogmart/udyogmart/internal/supplier/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type dispatchedEvent struct {
	userID snowflake.ID
	event  notificationdomain.EventKind
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []dispatchedEvent
}

func (d *recordingDispatcher) Dispatch(userID snowflake.ID, event notificationdomain.EventKind, payload map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, dispatchedEvent{userID: userID, event: event})
}

func (d *recordingDispatcher) Events() []dispatchedEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]dispatchedEvent, len(d.events))
	copy(out, d.events)
	return out
}

type fixture struct {
	svc      settlementdomain.Service
	db       *gorm.DB
	node     *snowflake.Node
	clk      *clock.FakeClock
	notifier *recordingDispatcher
}

func setupSettlement(t *testing.T) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&escrowdomain.EscrowAccount{},
		&supplierdomain.Supplier{},
		&auditdomain.EscrowAuditLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	escrowSvc := escrowservice.NewService(escrowservice.ServiceParam{
		DB:     db,
		Log:    log,
		GenID:  node,
		Clock:  clk,
		Repo:   escrowrepository.Provide(),
		Policy: config.NewStaticEscrowPolicyHolder(config.DefaultEscrowPolicy()),
	})

	auditSvc := auditservice.NewService(auditservice.ServiceParam{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
	})

	notifier := &recordingDispatcher{}
	svc := NewService(ServiceParam{
		DB:           db,
		Log:          log,
		Clock:        clk,
		EscrowSvc:    escrowSvc,
		SupplierRepo: supplierrepository.Provide(),
		AuditSvc:     auditSvc,
		Notifier:     notifier,
		Cache:        cache.NewSnapshotCache(),
		Recorder:     metrics.NewNopRecorder(),
	})

	return fixture{svc: svc, db: db, node: node, clk: clk, notifier: notifier}
}

func (f fixture) seedSupplier(t *testing.T) *supplierdomain.Supplier {
	t.Helper()
	s := &supplierdomain.Supplier{
		ID:        f.node.Generate(),
		Name:      "Patel Exports",
		Verified:  true,
		JoinedAt:  f.clk.Now().AddDate(-1, 0, 0),
		CreatedAt: f.clk.Now(),
		UpdatedAt: f.clk.Now(),
	}
	require.NoError(t, f.db.Create(s).Error)
	return s
}

func (f fixture) createFunded(t *testing.T, supplierID snowflake.ID) *escrowdomain.EscrowAccount {
	t.Helper()
	ctx := context.Background()

	account, err := f.svc.CreateEscrow(ctx, escrowdomain.CreateEscrowRequest{
		OrderID:    f.node.Generate(),
		BuyerID:    f.node.Generate(),
		SupplierID: supplierID,
		Amount:     100000,
		Currency:   "INR",
	})
	require.NoError(t, err)

	funded, err := f.svc.FundEscrow(ctx, escrowdomain.FundEscrowRequest{
		EscrowID:      account.ID,
		PaymentMethod: "upi",
		TransactionID: "txn1",
	})
	require.NoError(t, err)
	return funded
}

func TestReleaseSettlesSupplierCounters(t *testing.T) {
	f := setupSettlement(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t)
	account := f.createFunded(t, supplier.ID)

	released, err := f.svc.ReleaseEscrow(ctx, escrowdomain.ReleaseEscrowRequest{
		EscrowID: account.ID,
		QCPassed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, escrowdomain.StateReleased, released.State)

	var reloaded supplierdomain.Supplier
	require.NoError(t, f.db.First(&reloaded, "id = ?", supplier.ID).Error)
	assert.Equal(t, 1, reloaded.CompletedOrders)
	assert.Equal(t, 1, reloaded.QCPassedCount)
	assert.Equal(t, 0, reloaded.DisputedOrders)

	events := f.notifier.Events()
	require.Len(t, events, 4) // funded x2, released x2
	assert.Equal(t, notificationdomain.EventEscrowReleased, events[2].event)
	assert.Equal(t, notificationdomain.EventEscrowReleased, events[3].event)
	assert.Equal(t, supplier.ID, events[2].userID)
	assert.Equal(t, account.BuyerID, events[3].userID)
}

func TestFailedQCOpensDisputeAndCountsIt(t *testing.T) {
	f := setupSettlement(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t)
	account := f.createFunded(t, supplier.ID)

	disputed, err := f.svc.ReleaseEscrow(ctx, escrowdomain.ReleaseEscrowRequest{
		EscrowID: account.ID,
		QCPassed: false,
	})
	require.NoError(t, err)
	assert.Equal(t, escrowdomain.StateDisputed, disputed.State)

	var reloaded supplierdomain.Supplier
	require.NoError(t, f.db.First(&reloaded, "id = ?", supplier.ID).Error)
	assert.Equal(t, 0, reloaded.CompletedOrders)
	assert.Equal(t, 1, reloaded.DisputedOrders)
	assert.Equal(t, 1, reloaded.QCFailedCount)

	events := f.notifier.Events()
	require.Len(t, events, 4)
	assert.Equal(t, notificationdomain.EventEscrowDisputed, events[2].event)
}

func TestRefundCountsCancellation(t *testing.T) {
	f := setupSettlement(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t)
	account := f.createFunded(t, supplier.ID)

	refunded, err := f.svc.RefundEscrow(ctx, escrowdomain.RefundEscrowRequest{
		EscrowID: account.ID,
		Reason:   "buyer cancelled",
	})
	require.NoError(t, err)
	assert.Equal(t, escrowdomain.StateRefunded, refunded.State)

	var reloaded supplierdomain.Supplier
	require.NoError(t, f.db.First(&reloaded, "id = ?", supplier.ID).Error)
	assert.Equal(t, 1, reloaded.CancelledOrders)
	assert.Equal(t, 0, reloaded.CompletedOrders)

	events := f.notifier.Events()
	require.Len(t, events, 4)
	assert.Equal(t, notificationdomain.EventEscrowRefunded, events[2].event)
	assert.Equal(t, account.BuyerID, events[2].userID)
}

func TestAuditTrailPerTransition(t *testing.T) {
	f := setupSettlement(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t)
	account := f.createFunded(t, supplier.ID)

	_, err := f.svc.ReleaseEscrow(ctx, escrowdomain.ReleaseEscrowRequest{
		EscrowID: account.ID,
		QCPassed: true,
	})
	require.NoError(t, err)

	var rows []auditdomain.EscrowAuditLog
	require.NoError(t, f.db.Where("escrow_id = ?", account.ID).Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, 3)

	assert.Equal(t, "escrow.create", rows[0].Action)
	assert.Equal(t, string(escrowdomain.StatePending), rows[0].ToState)

	assert.Equal(t, "escrow.fund", rows[1].Action)
	assert.Equal(t, string(escrowdomain.StatePending), rows[1].FromState)
	assert.Equal(t, string(escrowdomain.StateFunded), rows[1].ToState)

	assert.Equal(t, "escrow.release", rows[2].Action)
	assert.Equal(t, string(escrowdomain.StateFunded), rows[2].FromState)
	assert.Equal(t, string(escrowdomain.StateReleased), rows[2].ToState)
}

func TestRejectedTransitionHasNoSideEffects(t *testing.T) {
	f := setupSettlement(t)
	ctx := context.Background()
	supplier := f.seedSupplier(t)
	account := f.createFunded(t, supplier.ID)

	_, err := f.svc.ReleaseEscrow(ctx, escrowdomain.ReleaseEscrowRequest{EscrowID: account.ID, QCPassed: true})
	require.NoError(t, err)

	before := len(f.notifier.Events())

	_, err = f.svc.RefundEscrow(ctx, escrowdomain.RefundEscrowRequest{EscrowID: account.ID, Reason: "too late"})
	assert.ErrorIs(t, err, escrowdomain.ErrInvalidStateTransition)

	var reloaded supplierdomain.Supplier
	require.NoError(t, f.db.First(&reloaded, "id = ?", supplier.ID).Error)
	assert.Equal(t, 0, reloaded.CancelledOrders)
	assert.Equal(t, before, len(f.notifier.Events()))
}
