package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	terminaldomain "github.com/kwachapos/fiscalgate/internal/terminal/domain"
	terminalrepo "github.com/kwachapos/fiscalgate/internal/terminal/repository"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeAuthority struct {
	blockingReason string
	blockingErr    error
	unblocked      bool
	unblockErr     error
	unblockCalls   int
}

func (f *fakeAuthority) BlockingMessage(context.Context, *terminaldomain.Terminal) (string, error) {
	return f.blockingReason, f.blockingErr
}

func (f *fakeAuthority) UnblockStatus(context.Context, *terminaldomain.Terminal) (bool, error) {
	f.unblockCalls++
	return f.unblocked, f.unblockErr
}

func setup(t *testing.T, auth *fakeAuthority) (terminaldomain.Service, terminaldomain.Repository, *terminaldomain.Terminal) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	assert.NoError(t, db.AutoMigrate(&terminaldomain.Terminal{}))

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)

	repo := terminalrepo.NewRepository(db)
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
	assert.NoError(t, repo.Create(context.Background(), terminal))

	svc := NewService(Params{Repo: repo, Authority: auth, Log: zap.NewNop()})
	return svc, repo, terminal
}

func TestEnsureSellableActiveTerminal(t *testing.T) {
	svc, _, terminal := setup(t, &fakeAuthority{})
	assert.NoError(t, svc.EnsureSellable(context.Background(), terminal))
}

func TestEnsureSellableBlockedTerminalFailsFast(t *testing.T) {
	auth := &fakeAuthority{}
	svc, repo, terminal := setup(t, auth)

	assert.NoError(t, repo.UpdateStatus(context.Background(), terminal.ID, terminaldomain.Blocked("held for audit")))
	fresh, err := repo.FindByID(context.Background(), terminal.ID)
	assert.NoError(t, err)

	err = svc.EnsureSellable(context.Background(), fresh)
	assert.ErrorIs(t, err, terminaldomain.ErrBlocked)
	assert.Contains(t, err.Error(), "held for audit")
	// Fail fast means no remote traffic at all.
	assert.Zero(t, auth.unblockCalls)
}

func TestBlockFromAuthorityStoresFetchedReason(t *testing.T) {
	svc, repo, terminal := setup(t, &fakeAuthority{blockingReason: "suspicious volume"})

	reason, err := svc.BlockFromAuthority(context.Background(), terminal)
	assert.NoError(t, err)
	assert.Equal(t, "suspicious volume", reason)

	stored, err := repo.FindByID(context.Background(), terminal.ID)
	assert.NoError(t, err)
	assert.True(t, stored.IsBlocked)
	if assert.NotNil(t, stored.BlockingReason) {
		assert.Equal(t, "suspicious volume", *stored.BlockingReason)
	}
}

func TestBlockFromAuthorityBlocksEvenWhenReasonFetchFails(t *testing.T) {
	svc, repo, terminal := setup(t, &fakeAuthority{blockingErr: errors.New("boom")})

	reason, err := svc.BlockFromAuthority(context.Background(), terminal)
	assert.NoError(t, err)
	assert.NotEmpty(t, reason)

	stored, err := repo.FindByID(context.Background(), terminal.ID)
	assert.NoError(t, err)
	assert.True(t, stored.IsBlocked)
}

func TestPollUnblockClearsState(t *testing.T) {
	auth := &fakeAuthority{unblocked: true}
	svc, repo, terminal := setup(t, auth)

	assert.NoError(t, repo.UpdateStatus(context.Background(), terminal.ID, terminaldomain.Blocked("hold")))
	blocked, err := repo.FindByID(context.Background(), terminal.ID)
	assert.NoError(t, err)

	cleared, err := svc.PollUnblock(context.Background(), blocked)
	assert.NoError(t, err)
	assert.True(t, cleared)

	stored, err := repo.FindByID(context.Background(), terminal.ID)
	assert.NoError(t, err)
	assert.False(t, stored.IsBlocked)
	assert.Nil(t, stored.BlockingReason)
}

func TestPollUnblockStaysBlockedOnNegativeAnswer(t *testing.T) {
	auth := &fakeAuthority{unblocked: false}
	svc, repo, terminal := setup(t, auth)

	assert.NoError(t, repo.UpdateStatus(context.Background(), terminal.ID, terminaldomain.Blocked("hold")))
	blocked, err := repo.FindByID(context.Background(), terminal.ID)
	assert.NoError(t, err)

	cleared, err := svc.PollUnblock(context.Background(), blocked)
	assert.NoError(t, err)
	assert.False(t, cleared)

	stored, err := repo.FindByID(context.Background(), terminal.ID)
	assert.NoError(t, err)
	assert.True(t, stored.IsBlocked)
}

func TestNextTransactionCountSerializesPerTerminal(t *testing.T) {
	_, repo, terminal := setup(t, &fakeAuthority{})

	seen := make(map[int64]bool)
	for i := 0; i < 20; i++ {
		n, err := repo.NextTransactionCount(context.Background(), terminal.ID)
		assert.NoError(t, err)
		assert.False(t, seen[n], "duplicate counter %d", n)
		seen[n] = true
	}
	assert.Len(t, seen, 20)
}
