package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// APICallLog is one immutable record of an outbound authority call. Rows
// are written for every attempt (success, rejection, or exception) and are
// never updated or read by the sale path; they exist for dispute
// resolution.
type APICallLog struct {
	ID snowflake.ID `gorm:"primaryKey"`

	Method          string `gorm:"type:text;not null"`
	URL             string `gorm:"type:text;not null"`
	RequestHeaders  string `gorm:"type:text"`
	RequestBody     string `gorm:"type:text"`
	ResponseStatus  int    `gorm:"not null;default:0"`
	ResponseHeaders string `gorm:"type:text"`
	ResponseBody    string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (APICallLog) TableName() string { return "api_call_logs" }

// Entry is the write-side shape of an API call record.
type Entry struct {
	Method          string
	URL             string
	RequestHeaders  map[string]string
	RequestBody     string
	ResponseStatus  int
	ResponseHeaders map[string]string
	ResponseBody    string
}

// Recorder persists API call entries. Implementations must swallow their
// own failures: telemetry must never fail or block the primary flow.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}
