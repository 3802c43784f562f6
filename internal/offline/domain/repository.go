package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound         = errors.New("offline_transaction_not_found")
	ErrDuplicateInvoice = errors.New("duplicate_invoice_number")
)

type Repository interface {
	Create(ctx context.Context, txn *OfflineTransaction) error
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*OfflineTransaction, error)

	// ListUnsubmitted returns rows with no submission timestamp, oldest
	// first, bounded by limit.
	ListUnsubmitted(ctx context.Context, limit int) ([]OfflineTransaction, error)

	// MarkSubmitted stamps a single row as reconciled. It only touches
	// rows that are still unsubmitted, so re-running after a crash is
	// safe and never widens beyond one row per call.
	MarkSubmitted(ctx context.Context, id snowflake.ID, at time.Time) error

	CountUnsubmitted(ctx context.Context) (int64, error)
}
