package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/udyogmart/udyogmart/internal/audit/domain"
	"github.com/udyogmart/udyogmart/internal/clock"
	"github.com/udyogmart/udyogmart/pkg/db/option"
	"github.com/udyogmart/udyogmart/pkg/db/pagination"
	"github.com/udyogmart/udyogmart/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultListPageSize = 50

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	store repository.Repository[auditdomain.EscrowAuditLog]
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

func NewService(p ServiceParam) auditdomain.Service {
	return &Service{
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		store: repository.ProvideStore[auditdomain.EscrowAuditLog](p.DB),
	}
}

func (s *Service) Record(ctx context.Context, entry auditdomain.Entry) error {
	row := auditdomain.EscrowAuditLog{
		ID:        s.genID.Generate(),
		EscrowID:  entry.EscrowID,
		OrderID:   entry.OrderID,
		Action:    entry.Action,
		FromState: entry.FromState,
		ToState:   entry.ToState,
		Metadata:  datatypes.JSONMap(entry.Metadata),
		CreatedAt: s.clock.Now(),
	}
	return s.store.Create(ctx, &row)
}

// List pages through an escrow's trail oldest first. Snowflake IDs are
// time-ordered, so the id doubles as the cursor.
func (s *Service) List(ctx context.Context, req auditdomain.ListRequest) (auditdomain.ListResponse, error) {
	limit := req.PageSize
	if limit <= 0 || limit > 250 {
		limit = defaultListPageSize
	}

	opts := []option.QueryOption{
		option.WithWhere("escrow_id = ?", req.EscrowID),
		option.WithOrder("id ASC"),
		option.WithLimit(limit + 1),
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return auditdomain.ListResponse{}, auditdomain.ErrInvalidPageToken
		}
		afterID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return auditdomain.ListResponse{}, auditdomain.ErrInvalidPageToken
		}
		opts = append(opts, option.WithWhere("id > ?", int64(afterID)))
	}

	rows, err := s.store.Find(ctx, &auditdomain.EscrowAuditLog{}, opts...)
	if err != nil {
		return auditdomain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, int32(limit), func(row *auditdomain.EscrowAuditLog) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: row.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	logs := make([]auditdomain.EscrowAuditLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, *row)
	}
	return auditdomain.ListResponse{Logs: logs, PageInfo: pageInfo}, nil
}
