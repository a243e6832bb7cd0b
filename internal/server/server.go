// Package server exposes the settlement engine over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/udyogmart/udyogmart/internal/audit/domain"
	"github.com/udyogmart/udyogmart/internal/clock"
	"github.com/udyogmart/udyogmart/internal/config"
	escrowdomain "github.com/udyogmart/udyogmart/internal/escrow/domain"
	gamificationdomain "github.com/udyogmart/udyogmart/internal/gamification/domain"
	"github.com/udyogmart/udyogmart/internal/ratelimit"
	settlementdomain "github.com/udyogmart/udyogmart/internal/settlement/domain"
	trustscoredomain "github.com/udyogmart/udyogmart/internal/trustscore/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, reg *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	// Serve the registry the recorder writes to, not the global one.
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, reg *prometheus.Registry) *gin.Engine {
	return NewEngine(log.Named("http"), reg)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	clock  clock.Clock

	settlementSvc   settlementdomain.Service
	escrowSvc       escrowdomain.Service
	trustScoreSvc   trustscoredomain.Service
	gamificationSvc gamificationdomain.Service
	auditSvc        auditdomain.Service
	fundLimiter     *ratelimit.FundLimiter
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	Clock clock.Clock

	SettlementSvc   settlementdomain.Service
	EscrowSvc       escrowdomain.Service
	TrustScoreSvc   trustscoredomain.Service
	GamificationSvc gamificationdomain.Service
	AuditSvc        auditdomain.Service
	FundLimiter     *ratelimit.FundLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		clock:           p.Clock,
		settlementSvc:   p.SettlementSvc,
		escrowSvc:       p.EscrowSvc,
		trustScoreSvc:   p.TrustScoreSvc,
		gamificationSvc: p.GamificationSvc,
		auditSvc:        p.AuditSvc,
		fundLimiter:     p.FundLimiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	// -------- Escrows --------
	v1.POST("/escrows", s.CreateEscrow)
	v1.GET("/escrows/:id", s.GetEscrowByID)
	v1.GET("/escrows/:id/audit-logs", s.ListEscrowAuditLogs)
	v1.POST("/escrows/:id/fund", s.FundRateLimit(), s.FundEscrow)
	v1.POST("/escrows/:id/release", s.ReleaseEscrow)
	v1.POST("/escrows/:id/refund", s.RefundEscrow)

	// -------- Suppliers --------
	v1.GET("/suppliers/:id/trust-score", s.GetTrustScore)
	v1.GET("/suppliers/:id/badges", s.GetBadges)

	// -------- Leaderboard --------
	v1.GET("/leaderboard", s.GetLeaderboard)
}
