package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/udyogmart/udyogmart/internal/audit"
	"github.com/udyogmart/udyogmart/internal/cache"
	"github.com/udyogmart/udyogmart/internal/clock"
	"github.com/udyogmart/udyogmart/internal/config"
	"github.com/udyogmart/udyogmart/internal/escrow"
	"github.com/udyogmart/udyogmart/internal/gamification"
	"github.com/udyogmart/udyogmart/internal/logger"
	"github.com/udyogmart/udyogmart/internal/metrics"
	"github.com/udyogmart/udyogmart/internal/migration"
	"github.com/udyogmart/udyogmart/internal/notification"
	"github.com/udyogmart/udyogmart/internal/ratelimit"
	"github.com/udyogmart/udyogmart/internal/scheduler"
	"github.com/udyogmart/udyogmart/internal/server"
	"github.com/udyogmart/udyogmart/internal/settlement"
	"github.com/udyogmart/udyogmart/internal/supplier"
	"github.com/udyogmart/udyogmart/internal/trustscore"
	"github.com/udyogmart/udyogmart/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		cache.Module,
		migration.Module,

		// Functional domains
		escrow.Module,
		supplier.Module,
		trustscore.Module,
		gamification.Module,
		audit.Module,
		notification.Module,
		settlement.Module,
		ratelimit.Module,
		scheduler.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
