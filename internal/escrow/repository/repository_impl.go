package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	escrowdomain "github.com/udyogmart/udyogmart/internal/escrow/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() escrowdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *escrowdomain.EscrowAccount) error {
	return db.WithContext(ctx).Create(account).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*escrowdomain.EscrowAccount, error) {
	var account escrowdomain.EscrowAccount
	err := db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *repo) FindByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*escrowdomain.EscrowAccount, error) {
	var account escrowdomain.EscrowAccount
	err := db.WithContext(ctx).Where("order_id = ?", orderID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// TransitionState applies precondition and mutation as one conditional
// UPDATE. A losing concurrent caller sees zero rows affected.
func (r *repo) TransitionState(ctx context.Context, db *gorm.DB, id snowflake.ID, from escrowdomain.EscrowState, mutation escrowdomain.StateMutation) (int64, error) {
	set := make(map[string]any, len(mutation.Set)+2)
	for k, v := range mutation.Set {
		set[k] = v
	}
	set["state"] = mutation.To
	set["updated_at"] = time.Now().UTC()

	result := db.WithContext(ctx).
		Model(&escrowdomain.EscrowAccount{}).
		Where("id = ? AND state = ?", id, from).
		Updates(set)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) ListExpiredPending(ctx context.Context, db *gorm.DB, before time.Time, limit int) ([]*escrowdomain.EscrowAccount, error) {
	var accounts []*escrowdomain.EscrowAccount
	err := db.WithContext(ctx).
		Where("state = ? AND expires_at < ? AND expiry_notified_at IS NULL", escrowdomain.StatePending, before).
		Order("expires_at ASC").
		Limit(limit).
		Find(&accounts).Error
	return accounts, err
}

func (r *repo) MarkExpiryNotified(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&escrowdomain.EscrowAccount{}).
		Where("id = ? AND expiry_notified_at IS NULL", id).
		Update("expiry_notified_at", at).Error
}
