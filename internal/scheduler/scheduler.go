// Package scheduler runs the periodic sweep that reconciles offline
// transactions with the fiscal authority.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kwachapos/fiscalgate/internal/authority"
	"github.com/kwachapos/fiscalgate/internal/clock"
	obsmetrics "github.com/kwachapos/fiscalgate/internal/observability/metrics"
	offlinedomain "github.com/kwachapos/fiscalgate/internal/offline/domain"
	terminaldomain "github.com/kwachapos/fiscalgate/internal/terminal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const resubmitJobName = "resubmit_offline"

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

// AuthorityClient is the slice of the remote authority the sweep needs.
type AuthorityClient interface {
	Resubmit(ctx context.Context, terminal *terminaldomain.Terminal, payload []byte) (authority.SubmitOutcome, error)
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Offline   offlinedomain.Repository
	Terminals terminaldomain.Repository
	Authority AuthorityClient
	Clock     clock.Clock
	Config    Config `optional:"true"`
}

type Scheduler struct {
	log       *zap.Logger
	cfg       Config
	offline   offlinedomain.Repository
	terminals terminaldomain.Repository
	authority AuthorityClient
	clock     clock.Clock
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Offline == nil || p.Terminals == nil || p.Authority == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:       p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:       p.Config.withDefaults(),
		offline:   p.Offline,
		terminals: p.Terminals,
		authority: p.Authority,
		clock:     p.Clock,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	metrics := obsmetrics.Gateway()
	metrics.IncJobRun(name)

	err := fn(ctx)
	metrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		metrics.IncJobTimeout(name)
		s.log.Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	metrics.IncJobError(name, err)
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	return s.runJob(parent, resubmitJobName, s.cfg.JobTimeout, s.ResubmitOfflineJob)
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ResubmitOfflineJob replays unsubmitted offline invoices against the
// authority, oldest first. Confirmed rows are stamped; rejected rows are
// logged and stamped so they stop retrying; a timeout means the authority
// is still unreachable, so the rest of the batch is left for the next
// sweep. Rows are never deleted.
func (s *Scheduler) ResubmitOfflineJob(ctx context.Context) error {
	rows, err := s.offline.ListUnsubmitted(ctx, s.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		obsmetrics.Gateway().SetOfflineBacklog(0)
		return nil
	}

	terminals := make(map[snowflake.ID]*terminaldomain.Terminal)
	drained := 0

	for i := range rows {
		row := &rows[i]

		terminal, ok := terminals[row.TerminalID]
		if !ok {
			terminal, err = s.terminals.FindByID(ctx, row.TerminalID)
			if err != nil {
				s.log.Error("offline row references unknown terminal",
					zap.String("invoice_number", row.InvoiceNumber),
					zap.Error(err),
				)
				continue
			}
			terminals[row.TerminalID] = terminal
		}

		outcome, err := s.authority.Resubmit(ctx, terminal, row.Payload)
		if err != nil {
			obsmetrics.Gateway().IncSubmission(obsmetrics.SubmissionModeResubmit, obsmetrics.OutcomeLabelTransport)
			return err
		}

		switch outcome.Kind {
		case authority.OutcomeTimeout:
			// Authority still unreachable; stop the sweep, keep the row.
			obsmetrics.Gateway().IncSubmission(obsmetrics.SubmissionModeResubmit, obsmetrics.OutcomeLabelTimeout)
			s.finishSweep(ctx, drained)
			return nil

		case authority.OutcomeRejected:
			obsmetrics.Gateway().IncSubmission(obsmetrics.SubmissionModeResubmit, obsmetrics.OutcomeLabelRejected)
			s.log.Warn("offline invoice rejected on resubmission",
				zap.String("invoice_number", row.InvoiceNumber),
				zap.Int64("status_code", outcome.StatusCode),
				zap.String("remark", outcome.Remark),
			)
		default:
			obsmetrics.Gateway().IncSubmission(obsmetrics.SubmissionModeResubmit, obsmetrics.OutcomeLabelConfirmed)
		}

		if err := s.offline.MarkSubmitted(ctx, row.ID, s.clock.Now()); err != nil {
			return err
		}
		drained++
	}

	s.finishSweep(ctx, drained)
	return nil
}

func (s *Scheduler) finishSweep(ctx context.Context, drained int) {
	metrics := obsmetrics.Gateway()
	metrics.AddBatchProcessed(resubmitJobName, drained)
	if backlog, err := s.offline.CountUnsubmitted(ctx); err == nil {
		metrics.SetOfflineBacklog(backlog)
	}
	if drained > 0 {
		s.log.Info("offline backlog drained",
			zap.Int("submitted", drained),
		)
	}
}
