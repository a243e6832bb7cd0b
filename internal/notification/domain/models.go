// Package domain defines the notification contract. Transport is external;
// the settlement core only hands events to a sink and never waits on it.
package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type EventKind string

const (
	EventEscrowFunded   EventKind = "escrow.funded"
	EventEscrowReleased EventKind = "escrow.released"
	EventEscrowDisputed EventKind = "escrow.disputed"
	EventEscrowRefunded EventKind = "escrow.refunded"
	EventEscrowExpired  EventKind = "escrow.expired"
)

// Sink delivers one event to one user. Implementations may block; callers
// go through the Dispatcher which never does.
type Sink interface {
	Notify(ctx context.Context, userID snowflake.ID, event EventKind, payload map[string]any) error
}

// Dispatcher is the fire-and-forget facade used by the settlement
// orchestrator. Dispatch must return immediately; delivery failures are
// logged and counted, never surfaced.
type Dispatcher interface {
	Dispatch(userID snowflake.ID, event EventKind, payload map[string]any)
}
