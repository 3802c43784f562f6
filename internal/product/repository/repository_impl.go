package repository

import (
	"context"
	"errors"

	productdomain "github.com/kwachapos/fiscalgate/internal/product/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) productdomain.Repository {
	return &repository{db: db}
}

func (r *repository) FindByCode(ctx context.Context, code string) (*productdomain.Product, error) {
	var product productdomain.Product
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, productdomain.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context) ([]productdomain.Product, error) {
	var products []productdomain.Product
	err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) Upsert(ctx context.Context, product *productdomain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "unit_price", "tax_rate_id", "is_service", "updated_at"}),
		}).
		Create(product).Error
}
