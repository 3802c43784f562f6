package repository

import (
	"context"
	"errors"

	taxdomain "github.com/kwachapos/fiscalgate/internal/tax/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) taxdomain.Repository {
	return &repository{db: db}
}

func (r *repository) FindByRateID(ctx context.Context, rateID string) (*taxdomain.TaxRate, error) {
	var rate taxdomain.TaxRate
	err := r.db.WithContext(ctx).
		Where("rate_id = ?", rateID).
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taxdomain.ErrNotFound
		}
		return nil, err
	}
	return &rate, nil
}

func (r *repository) List(ctx context.Context) ([]taxdomain.TaxRate, error) {
	var rates []taxdomain.TaxRate
	err := r.db.WithContext(ctx).
		Order("ordinal ASC, rate_id ASC").
		Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *repository) Upsert(ctx context.Context, rate *taxdomain.TaxRate) error {
	if err := rate.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "rate_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "rate", "ordinal", "charge_mode", "updated_at"}),
		}).
		Create(rate).Error
}
