package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	offlinedomain "github.com/kwachapos/fiscalgate/internal/offline/domain"
	"github.com/kwachapos/fiscalgate/pkg/db"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) offlinedomain.Repository {
	return &repository{db: conn}
}

func (r *repository) Create(ctx context.Context, txn *offlinedomain.OfflineTransaction) error {
	err := r.db.WithContext(ctx).Create(txn).Error
	if err != nil && db.IsDuplicateKeyErr(err) {
		return offlinedomain.ErrDuplicateInvoice
	}
	return err
}

func (r *repository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*offlinedomain.OfflineTransaction, error) {
	var txn offlinedomain.OfflineTransaction
	err := r.db.WithContext(ctx).
		Where("invoice_number = ?", invoiceNumber).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, offlinedomain.ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *repository) ListUnsubmitted(ctx context.Context, limit int) ([]offlinedomain.OfflineTransaction, error) {
	var txns []offlinedomain.OfflineTransaction
	stmt := r.db.WithContext(ctx).
		Where("submitted_at IS NULL").
		Order("created_at ASC, id ASC")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) MarkSubmitted(ctx context.Context, id snowflake.ID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&offlinedomain.OfflineTransaction{}).
		Where("id = ? AND submitted_at IS NULL", id).
		Update("submitted_at", at.UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return offlinedomain.ErrNotFound
	}
	return nil
}

func (r *repository) CountUnsubmitted(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&offlinedomain.OfflineTransaction{}).
		Where("submitted_at IS NULL").
		Count(&count).Error
	return count, err
}
