package service

import (
	"context"
	"fmt"

	terminaldomain "github.com/kwachapos/fiscalgate/internal/terminal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// AuthorityClient is the slice of the remote authority the blocking state
// machine needs.
type AuthorityClient interface {
	BlockingMessage(ctx context.Context, terminal *terminaldomain.Terminal) (string, error)
	UnblockStatus(ctx context.Context, terminal *terminaldomain.Terminal) (bool, error)
}

type Params struct {
	fx.In

	Repo      terminaldomain.Repository
	Authority AuthorityClient
	Log       *zap.Logger
}

type service struct {
	repo      terminaldomain.Repository
	authority AuthorityClient
	log       *zap.Logger
}

func NewService(p Params) terminaldomain.Service {
	return &service{
		repo:      p.Repo,
		authority: p.Authority,
		log:       p.Log.Named("terminal"),
	}
}

// EnsureSellable rejects sales on a blocked terminal before any remote
// round trip. The terminal row is the single source of truth, so a block
// survives process restarts without consulting the authority.
func (s *service) EnsureSellable(_ context.Context, terminal *terminaldomain.Terminal) error {
	status := terminal.Status()
	if !status.IsBlocked() {
		return nil
	}
	return fmt.Errorf("%w: %s", terminaldomain.ErrBlocked, status.Reason())
}

// BlockFromAuthority moves the terminal to Blocked, storing the reason
// fetched from the authority. If the reason fetch itself fails the
// terminal is still blocked with a generic reason; staying Active on a
// terminal the authority flagged is not an option.
func (s *service) BlockFromAuthority(ctx context.Context, terminal *terminaldomain.Terminal) (string, error) {
	reason, err := s.authority.BlockingMessage(ctx, terminal)
	if err != nil {
		s.log.Warn("could not fetch blocking message",
			zap.String("terminal_id", terminal.TerminalID),
			zap.Error(err),
		)
		reason = "blocked by the tax authority"
	}

	status := terminaldomain.Blocked(reason)
	if err := s.repo.UpdateStatus(ctx, terminal.ID, status); err != nil {
		return "", err
	}
	terminal.ApplyStatus(status)

	s.log.Info("terminal blocked",
		zap.String("terminal_id", terminal.TerminalID),
		zap.String("reason", reason),
	)
	return reason, nil
}

// PollUnblock is the only path out of the Blocked state.
func (s *service) PollUnblock(ctx context.Context, terminal *terminaldomain.Terminal) (bool, error) {
	if !terminal.Status().IsBlocked() {
		return true, nil
	}

	cleared, err := s.authority.UnblockStatus(ctx, terminal)
	if err != nil {
		return false, err
	}
	if !cleared {
		return false, nil
	}

	status := terminaldomain.Active()
	if err := s.repo.UpdateStatus(ctx, terminal.ID, status); err != nil {
		return false, err
	}
	terminal.ApplyStatus(status)

	s.log.Info("terminal unblocked", zap.String("terminal_id", terminal.TerminalID))
	return true, nil
}
