package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type TrustScoreResponse struct {
	SupplierID snowflake.ID `json:"supplier_id"`
	Breakdown
}

// Service resolves a supplier's metrics and scores them. Read-only.
type Service interface {
	ComputeTrustScore(ctx context.Context, supplierID snowflake.ID) (TrustScoreResponse, error)
}
