package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	supplierdomain "github.com/udyogmart/udyogmart/internal/supplier/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() supplierdomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*supplierdomain.Supplier, error) {
	var supplier supplierdomain.Supplier
	err := db.WithContext(ctx).Where("id = ?", id).First(&supplier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &supplier, nil
}

func (r *repo) ApplyOutcome(ctx context.Context, db *gorm.DB, id snowflake.ID, outcome supplierdomain.SettlementOutcome, at time.Time) error {
	var set string
	switch outcome {
	case supplierdomain.OutcomeCompleted:
		set = "completed_orders = completed_orders + 1, qc_passed_count = qc_passed_count + 1"
	case supplierdomain.OutcomeDisputed:
		set = "disputed_orders = disputed_orders + 1, qc_failed_count = qc_failed_count + 1"
	case supplierdomain.OutcomeCancelled:
		set = "cancelled_orders = cancelled_orders + 1"
	default:
		return fmt.Errorf("unknown settlement outcome %q", outcome)
	}

	result := db.WithContext(ctx).Exec(
		fmt.Sprintf("UPDATE suppliers SET %s, updated_at = ? WHERE id = ?", set),
		at, id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return supplierdomain.ErrNotFound
	}
	return nil
}

func (r *repo) ListLeaderboardCandidates(ctx context.Context, db *gorm.DB, limit int) ([]*supplierdomain.Supplier, error) {
	var suppliers []*supplierdomain.Supplier
	stmt := db.WithContext(ctx).
		Where("verified = ? AND total_orders > 0", true).
		Order("rating DESC, total_orders DESC, id ASC")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	err := stmt.Find(&suppliers).Error
	return suppliers, err
}

func (r *repo) PreviousRanks(ctx context.Context, db *gorm.DB) (map[snowflake.ID]int, error) {
	var records []supplierdomain.RankRecord
	if err := db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}

	ranks := make(map[snowflake.ID]int, len(records))
	for _, rec := range records {
		ranks[rec.SupplierID] = rec.Rank
	}
	return ranks, nil
}

func (r *repo) SaveRanks(ctx context.Context, db *gorm.DB, entries []supplierdomain.RankEntry, at time.Time) error {
	if len(entries) == 0 {
		return nil
	}

	records := make([]supplierdomain.RankRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, supplierdomain.RankRecord{
			SupplierID: entry.SupplierID,
			Rank:       entry.Rank,
			ComputedAt: at,
		})
	}

	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "supplier_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rank", "computed_at"}),
		}).
		Create(&records).Error
}
