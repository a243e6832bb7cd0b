// Package domain defines the immutable settlement audit trail.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/udyogmart/udyogmart/pkg/db/pagination"
	"gorm.io/datatypes"
)

var ErrInvalidPageToken = errors.New("invalid_page_token")

// EscrowAuditLog is an append-only record of one settlement action.
// Rows are never updated or deleted.
type EscrowAuditLog struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	EscrowID  snowflake.ID      `gorm:"not null;index" json:"escrow_id"`
	OrderID   snowflake.ID      `gorm:"not null;index" json:"order_id"`
	Action    string            `gorm:"type:text;not null" json:"action"`
	FromState string            `gorm:"type:text" json:"from_state"`
	ToState   string            `gorm:"type:text" json:"to_state"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (EscrowAuditLog) TableName() string { return "escrow_audit_logs" }

type Entry struct {
	EscrowID  snowflake.ID
	OrderID   snowflake.ID
	Action    string
	FromState string
	ToState   string
	Metadata  map[string]any
}

type ListRequest struct {
	EscrowID  snowflake.ID
	PageToken string
	PageSize  int
}

type ListResponse struct {
	Logs     []EscrowAuditLog     `json:"logs"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

type Service interface {
	// Record appends one audit row. Callers treat failures as best-effort:
	// the escrow transition is the durable fact of record.
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}
