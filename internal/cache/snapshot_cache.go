package cache

import (
	"time"

	"github.com/bwmarrin/snowflake"
	supplierdomain "github.com/udyogmart/udyogmart/internal/supplier/domain"
)

// Snapshots are cached only long enough to serve one burst of requests;
// settlement always reads through to the store.
const defaultSnapshotTTL = 15 * time.Second

// SnapshotCache holds supplier metrics snapshots for badge/leaderboard reads.
type SnapshotCache interface {
	GetSnapshot(supplierID snowflake.ID) (supplierdomain.MetricsSnapshot, bool)
	SetSnapshot(supplierID snowflake.ID, snap supplierdomain.MetricsSnapshot)
	Invalidate(supplierID snowflake.ID)
}

type snapshotCache struct {
	snapshots Cache[snowflake.ID, supplierdomain.MetricsSnapshot]
	ttl       time.Duration
}

func NewSnapshotCache() SnapshotCache {
	return &snapshotCache{
		snapshots: NewTTLCache[snowflake.ID, supplierdomain.MetricsSnapshot](),
		ttl:       defaultSnapshotTTL,
	}
}

func (c *snapshotCache) GetSnapshot(supplierID snowflake.ID) (supplierdomain.MetricsSnapshot, bool) {
	return c.snapshots.Get(supplierID)
}

func (c *snapshotCache) SetSnapshot(supplierID snowflake.ID, snap supplierdomain.MetricsSnapshot) {
	if snap.SupplierID == 0 {
		return
	}
	c.snapshots.Set(supplierID, snap, c.ttl)
}

func (c *snapshotCache) Invalidate(supplierID snowflake.ID) {
	c.snapshots.Delete(supplierID)
}
