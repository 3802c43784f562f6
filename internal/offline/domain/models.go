package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// OfflineTransaction is a sale that was accepted and signed locally
// because the authority could not be reached in time. The invoice number
// is the natural key and the idempotency key toward the authority: a new
// sale always gets a fresh number, so at most one row can ever exist per
// invoice.
//
// SubmittedAt is nil until the resubmission sweep reconciles the row with
// the authority; confirmed rows are kept as an audit trail, never deleted.
type OfflineTransaction struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	TenantID   snowflake.ID `gorm:"column:tenant_id;not null;index"`
	TerminalID snowflake.ID `gorm:"column:terminal_id;not null;index"`

	InvoiceNumber string         `gorm:"column:invoice_number;type:text;not null;uniqueIndex"`
	Payload       datatypes.JSON `gorm:"not null"`

	SubmittedAt *time.Time `gorm:"index"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (OfflineTransaction) TableName() string { return "offline_transactions" }

// Submitted reports whether the row has been reconciled with the
// authority.
func (o *OfflineTransaction) Submitted() bool {
	return o.SubmittedAt != nil
}
