package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	FindByDeviceID(ctx context.Context, deviceID string) (*Terminal, error)
	FindByID(ctx context.Context, id snowflake.ID) (*Terminal, error)
	Create(ctx context.Context, terminal *Terminal) error

	// NextTransactionCount atomically advances and returns the terminal's
	// invoice sequence. Concurrent callers on the same terminal are
	// serialized by the storage layer; no two calls return the same value.
	NextTransactionCount(ctx context.Context, id snowflake.ID) (int64, error)

	// UpdateStatus persists the blocking state as a single-row write.
	UpdateStatus(ctx context.Context, id snowflake.ID, status Status) error
}

// Service exposes the terminal blocking state machine.
type Service interface {
	// EnsureSellable fails fast with ErrBlocked (carrying the stored
	// reason) when the terminal is blocked; no remote call is made.
	EnsureSellable(ctx context.Context, terminal *Terminal) error

	// BlockFromAuthority transitions Active -> Blocked, fetching the
	// blocking message from the authority for the stored reason.
	BlockFromAuthority(ctx context.Context, terminal *Terminal) (string, error)

	// PollUnblock asks the authority whether the terminal has been
	// cleared and, if so, transitions Blocked -> Active.
	PollUnblock(ctx context.Context, terminal *Terminal) (bool, error)
}
