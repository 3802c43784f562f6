package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/kwachapos/fiscalgate/internal/authority"
	"github.com/kwachapos/fiscalgate/internal/clock"
	offlinedomain "github.com/kwachapos/fiscalgate/internal/offline/domain"
	offlinerepo "github.com/kwachapos/fiscalgate/internal/offline/repository"
	terminaldomain "github.com/kwachapos/fiscalgate/internal/terminal/domain"
	terminalrepo "github.com/kwachapos/fiscalgate/internal/terminal/repository"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeResubmitter struct {
	outcomes []authority.SubmitOutcome
	err      error
	calls    int
}

func (f *fakeResubmitter) Resubmit(context.Context, *terminaldomain.Terminal, []byte) (authority.SubmitOutcome, error) {
	f.calls++
	if f.err != nil {
		return authority.SubmitOutcome{}, f.err
	}
	if len(f.outcomes) == 0 {
		return authority.SubmitOutcome{Kind: authority.OutcomeConfirmed}, nil
	}
	out := f.outcomes[0]
	if len(f.outcomes) > 1 {
		f.outcomes = f.outcomes[1:]
	}
	return out, nil
}

type fixture struct {
	sched     *Scheduler
	offline   offlinedomain.Repository
	terminals terminaldomain.Repository
	auth      *fakeResubmitter
	clock     *clock.FakeClock
	node      *snowflake.Node
	terminal  *terminaldomain.Terminal
}

func setup(t *testing.T, auth *fakeResubmitter) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	assert.NoError(t, db.AutoMigrate(&terminaldomain.Terminal{}, &offlinedomain.OfflineTransaction{}))

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)

	terminals := terminalrepo.NewRepository(db)
	offline := offlinerepo.NewRepository(db)

	terminal := &terminaldomain.Terminal{
		ID:         node.Generate(),
		TenantID:   node.Generate(),
		DeviceID:   "DEV1234567890AB0",
		TerminalID: "TERM-1",
		SecretKey:  "secret",
		Token:      "token",
		TaxpayerID: 5001,
		Position:   1,
	}
	assert.NoError(t, terminals.Create(context.Background(), terminal))

	fakeNow := clock.NewFakeClock(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))
	sched, err := New(Params{
		Log:       zap.NewNop(),
		Offline:   offline,
		Terminals: terminals,
		Authority: auth,
		Clock:     fakeNow,
		Config:    Config{RunInterval: time.Minute, BatchSize: 10, JobTimeout: 5 * time.Second},
	})
	assert.NoError(t, err)

	return &fixture{
		sched:     sched,
		offline:   offline,
		terminals: terminals,
		auth:      auth,
		clock:     fakeNow,
		node:      node,
		terminal:  terminal,
	}
}

func (f *fixture) queueOffline(t *testing.T, invoiceNumber string) *offlinedomain.OfflineTransaction {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"invoiceHeader": map[string]string{"invoiceNumber": invoiceNumber},
	})
	assert.NoError(t, err)

	txn := &offlinedomain.OfflineTransaction{
		ID:            f.node.Generate(),
		TenantID:      f.terminal.TenantID,
		TerminalID:    f.terminal.ID,
		InvoiceNumber: invoiceNumber,
		Payload:       payload,
	}
	assert.NoError(t, f.offline.Create(context.Background(), txn))
	return txn
}

func TestResubmitDrainsBacklogThenGoesIdle(t *testing.T) {
	auth := &fakeResubmitter{}
	f := setup(t, auth)

	for i := 0; i < 3; i++ {
		f.queueOffline(t, fmt.Sprintf("BpB-B-kyNd-%c", 'B'+i))
	}

	assert.NoError(t, f.sched.RunOnce(context.Background()))
	assert.Equal(t, 3, auth.calls)

	backlog, err := f.offline.CountUnsubmitted(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, backlog)

	// Second run finds nothing and performs zero remote calls.
	assert.NoError(t, f.sched.RunOnce(context.Background()))
	assert.Equal(t, 3, auth.calls)
}

func TestResubmitStampsSubmittedAtFromClock(t *testing.T) {
	auth := &fakeResubmitter{}
	f := setup(t, auth)
	txn := f.queueOffline(t, "BpB-B-kyNd-B")

	f.clock.Advance(2 * time.Hour)
	assert.NoError(t, f.sched.RunOnce(context.Background()))

	stored, err := f.offline.FindByInvoiceNumber(context.Background(), txn.InvoiceNumber)
	assert.NoError(t, err)
	if assert.True(t, stored.Submitted()) {
		assert.WithinDuration(t, f.clock.Now(), stored.SubmittedAt.UTC(), time.Second)
	}
}

func TestResubmitTimeoutLeavesRemainingRows(t *testing.T) {
	auth := &fakeResubmitter{outcomes: []authority.SubmitOutcome{
		{Kind: authority.OutcomeConfirmed},
		{Kind: authority.OutcomeTimeout},
	}}
	f := setup(t, auth)

	f.queueOffline(t, "BpB-B-kyNd-B")
	f.queueOffline(t, "BpB-B-kyNd-C")
	f.queueOffline(t, "BpB-B-kyNd-D")

	assert.NoError(t, f.sched.RunOnce(context.Background()))
	// First row confirmed, second timed out; the sweep stops there.
	assert.Equal(t, 2, auth.calls)

	backlog, err := f.offline.CountUnsubmitted(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(2), backlog)
}

func TestResubmitRejectedRowIsStampedAndLogged(t *testing.T) {
	auth := &fakeResubmitter{outcomes: []authority.SubmitOutcome{
		{Kind: authority.OutcomeRejected, StatusCode: -3, Remark: "duplicate"},
	}}
	f := setup(t, auth)
	txn := f.queueOffline(t, "BpB-B-kyNd-B")

	assert.NoError(t, f.sched.RunOnce(context.Background()))

	stored, err := f.offline.FindByInvoiceNumber(context.Background(), txn.InvoiceNumber)
	assert.NoError(t, err)
	assert.True(t, stored.Submitted())
}

func TestResubmitTransportErrorSurfaces(t *testing.T) {
	auth := &fakeResubmitter{err: authority.ErrTransport}
	f := setup(t, auth)
	f.queueOffline(t, "BpB-B-kyNd-B")

	err := f.sched.RunOnce(context.Background())
	assert.ErrorIs(t, err, authority.ErrTransport)

	backlog, countErr := f.offline.CountUnsubmitted(context.Background())
	assert.NoError(t, countErr)
	assert.Equal(t, int64(1), backlog)
}

func TestRunForeverStopsOnContextCancel(t *testing.T) {
	auth := &fakeResubmitter{}
	f := setup(t, auth)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.sched.RunForever(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunForever did not stop after cancel")
	}
}
