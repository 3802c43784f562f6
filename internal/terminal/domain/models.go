package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Terminal is a point-of-sale device bound to a taxpayer. It holds the
// fiscal secret and bearer token issued at activation, plus the blocking
// state driven by authority responses.
type Terminal struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	TenantID snowflake.ID `gorm:"column:tenant_id;not null;index"`

	DeviceID       string `gorm:"column:device_id;type:text;not null;uniqueIndex"`
	TerminalID     string `gorm:"column:terminal_id;type:text;not null;uniqueIndex"`
	ActivationCode string `gorm:"column:activation_code;type:text;not null"`
	SecretKey      string `gorm:"column:secret_key;type:text;not null"`
	Token          string `gorm:"type:text;not null"`

	SiteID     string `gorm:"column:site_id;type:text"`
	Label      string `gorm:"type:text"`
	TaxpayerID int64  `gorm:"column:taxpayer_id;not null"`
	Position   int64  `gorm:"not null"`

	GlobalConfigVersion   int64 `gorm:"not null;default:0"`
	TaxpayerConfigVersion int64 `gorm:"not null;default:0"`
	TerminalConfigVersion int64 `gorm:"not null;default:0"`

	// TransactionCount is the per-terminal invoice sequence. It is only
	// advanced through Repository.NextTransactionCount, which serializes
	// concurrent sales on the same terminal.
	TransactionCount int64 `gorm:"not null;default:0"`

	IsBlocked      bool    `gorm:"not null;default:false"`
	BlockingReason *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Terminal) TableName() string { return "terminals" }

// Status returns the terminal's blocking state as a tagged value.
func (t *Terminal) Status() Status {
	if !t.IsBlocked {
		return Active()
	}
	reason := ""
	if t.BlockingReason != nil {
		reason = *t.BlockingReason
	}
	return Blocked(reason)
}

// ApplyStatus writes a Status back onto the persisted columns. The two
// fields are only ever mutated together through this method.
func (t *Terminal) ApplyStatus(s Status) {
	if s.IsBlocked() {
		reason := s.Reason()
		t.IsBlocked = true
		t.BlockingReason = &reason
		return
	}
	t.IsBlocked = false
	t.BlockingReason = nil
}
