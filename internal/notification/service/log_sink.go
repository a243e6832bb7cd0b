package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	notificationdomain "github.com/udyogmart/udyogmart/internal/notification/domain"
	"go.uber.org/zap"
)

// LogSink is the default sink when no transport is configured. The real
// WhatsApp/SMS transport lives in the surrounding system and plugs in by
// providing its own Sink.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) notificationdomain.Sink {
	return &LogSink{log: log.Named("notification.sink")}
}

func (s *LogSink) Notify(ctx context.Context, userID snowflake.ID, event notificationdomain.EventKind, payload map[string]any) error {
	_ = ctx
	s.log.Info("notify",
		zap.String("user_id", userID.String()),
		zap.String("event", string(event)),
		zap.Any("payload", payload),
	)
	return nil
}
