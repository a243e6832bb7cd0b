package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/udyogmart/udyogmart/internal/metrics"
	supplierdomain "github.com/udyogmart/udyogmart/internal/supplier/domain"
	trustscoredomain "github.com/udyogmart/udyogmart/internal/trustscore/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     supplierdomain.Repository
	recorder *metrics.Recorder
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     supplierdomain.Repository
	Recorder *metrics.Recorder
}

func NewService(p ServiceParam) trustscoredomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("trustscore.service"),
		repo:     p.Repo,
		recorder: p.Recorder,
	}
}

func (s *Service) ComputeTrustScore(ctx context.Context, supplierID snowflake.ID) (trustscoredomain.TrustScoreResponse, error) {
	supplier, err := s.repo.FindByID(ctx, s.db, supplierID)
	if err != nil {
		return trustscoredomain.TrustScoreResponse{}, fmt.Errorf("load supplier: %w", err)
	}
	if supplier == nil {
		return trustscoredomain.TrustScoreResponse{}, supplierdomain.ErrNotFound
	}

	breakdown := trustscoredomain.Compute(supplier.Snapshot())
	s.recorder.RecordTrustScoreComputation()

	return trustscoredomain.TrustScoreResponse{
		SupplierID: supplierID,
		Breakdown:  breakdown,
	}, nil
}
