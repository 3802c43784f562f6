package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	terminaldomain "github.com/kwachapos/fiscalgate/internal/terminal/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) terminaldomain.Repository {
	return &repository{db: db}
}

func (r *repository) FindByDeviceID(ctx context.Context, deviceID string) (*terminaldomain.Terminal, error) {
	var terminal terminaldomain.Terminal
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		First(&terminal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, terminaldomain.ErrUnknownDevice
		}
		return nil, err
	}
	return &terminal, nil
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*terminaldomain.Terminal, error) {
	var terminal terminaldomain.Terminal
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&terminal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, terminaldomain.ErrNotFound
		}
		return nil, err
	}
	return &terminal, nil
}

func (r *repository) Create(ctx context.Context, terminal *terminaldomain.Terminal) error {
	return r.db.WithContext(ctx).Create(terminal).Error
}

// NextTransactionCount claims the next sequence value inside a transaction.
// The UPDATE takes a row lock (or the write lock on sqlite), so two sales
// on the same terminal cannot observe the same counter.
func (r *repository) NextTransactionCount(ctx context.Context, id snowflake.ID) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`UPDATE terminals SET transaction_count = transaction_count + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return terminaldomain.ErrNotFound
		}
		return tx.Raw(`SELECT transaction_count FROM terminals WHERE id = ?`, id).Scan(&next).Error
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id snowflake.ID, status terminaldomain.Status) error {
	updates := map[string]any{
		"is_blocked":      status.IsBlocked(),
		"blocking_reason": nil,
	}
	if status.IsBlocked() {
		updates["blocking_reason"] = status.Reason()
	}
	res := r.db.WithContext(ctx).
		Model(&terminaldomain.Terminal{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return terminaldomain.ErrNotFound
	}
	return nil
}
