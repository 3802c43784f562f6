package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ChargeMode describes how the authority applies a rate.
type ChargeMode string

const (
	ChargeModeStandard ChargeMode = "standard"
	ChargeModeExempt   ChargeMode = "exempt"
	ChargeModeZero     ChargeMode = "zero"
)

// TaxRate is an authority-defined rate, immutable per version. RateID is
// the external identifier line items reference; it never changes once an
// invoice has been issued against it.
type TaxRate struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	RateID     string       `gorm:"column:rate_id;type:text;not null;uniqueIndex"`
	Name       string       `gorm:"type:text;not null"`
	Rate       float64      `gorm:"not null"` // percentage, e.g. 16.5 for 16.5%
	Ordinal    int          `gorm:"not null;default:0"`
	ChargeMode ChargeMode   `gorm:"column:charge_mode;type:text;not null;default:'standard'"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (TaxRate) TableName() string { return "tax_rates" }

func (r *TaxRate) Validate() error {
	if r.RateID == "" {
		return ErrInvalidRateID
	}
	if r.Rate < 0 {
		return ErrInvalidRate
	}
	return nil
}
