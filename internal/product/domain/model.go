package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Product is a catalog entry terminals sell. Code is the external
// identifier line items reference on submitted invoices.
type Product struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Code      string       `gorm:"type:text;not null;uniqueIndex"`
	Name      string       `gorm:"type:text;not null"`
	UnitPrice float64      `gorm:"column:unit_price;not null"`
	TaxRateID string       `gorm:"column:tax_rate_id;type:text;not null"`
	IsService bool         `gorm:"column:is_service;not null;default:false"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

func (p *Product) Validate() error {
	if p.Code == "" {
		return ErrInvalidCode
	}
	if p.UnitPrice < 0 {
		return ErrInvalidPrice
	}
	return nil
}
