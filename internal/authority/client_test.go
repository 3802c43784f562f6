package authority

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	apilogdomain "github.com/kwachapos/fiscalgate/internal/apilog/domain"
	"github.com/kwachapos/fiscalgate/internal/config"
	invoicedomain "github.com/kwachapos/fiscalgate/internal/invoice/domain"
	"github.com/kwachapos/fiscalgate/internal/signing"
	terminaldomain "github.com/kwachapos/fiscalgate/internal/terminal/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type memoryRecorder struct {
	mu      sync.Mutex
	entries []apilogdomain.Entry
}

func (r *memoryRecorder) Record(_ context.Context, entry apilogdomain.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *memoryRecorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func newTestClient(t *testing.T, baseURL string, timeout time.Duration) (*Client, *memoryRecorder) {
	t.Helper()
	rec := &memoryRecorder{}
	client := NewClient(Params{
		Config:   config.Config{EISBaseURL: baseURL, EISTimeout: timeout},
		Log:      zap.NewNop(),
		Recorder: rec,
	})
	return client, rec
}

func testTerminal() *terminaldomain.Terminal {
	return &terminaldomain.Terminal{
		TerminalID:     "TERM-1",
		Token:          "bearer-token",
		ActivationCode: "ACT-1",
		SecretKey:      "secret",
	}
}

func testDocument() *invoicedomain.Document {
	return &invoicedomain.Document{
		InvoiceHeader: invoicedomain.Header{InvoiceNumber: "A-B-kjJh-C"},
	}
}

func TestSubmitSaleConfirmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sales/submit-sales-transaction", r.URL.Path)
		assert.Equal(t, "Bearer bearer-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, signing.ActivationHeader("ACT-1", "secret"), r.Header.Get("x-signature"))
		w.Write([]byte(`{"statusCode":0,"remark":"ok","data":{"validationURL":"https://eis/validate/1","shouldDownloadLatestConfig":true,"shouldBlockTerminal":false}}`))
	}))
	defer srv.Close()

	client, rec := newTestClient(t, srv.URL, time.Second)
	outcome, err := client.SubmitSale(context.Background(), testTerminal(), testDocument())
	assert.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, outcome.Kind)
	assert.Equal(t, "https://eis/validate/1", outcome.ValidationURL)
	assert.True(t, outcome.ShouldDownloadLatestConfig)
	assert.False(t, outcome.ShouldBlockTerminal)
	assert.Equal(t, 1, rec.len())
}

func TestSubmitSaleRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"statusCode":-3,"remark":"invalid taxpayer"}`))
	}))
	defer srv.Close()

	client, rec := newTestClient(t, srv.URL, time.Second)
	outcome, err := client.SubmitSale(context.Background(), testTerminal(), testDocument())
	assert.NoError(t, err)
	assert.Equal(t, OutcomeRejected, outcome.Kind)
	assert.Equal(t, int64(-3), outcome.StatusCode)
	assert.Equal(t, "invalid taxpayer", outcome.Remark)
	assert.Equal(t, 1, rec.len())
}

func TestSubmitSaleTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	client, rec := newTestClient(t, srv.URL, 50*time.Millisecond)
	outcome, err := client.SubmitSale(context.Background(), testTerminal(), testDocument())
	assert.NoError(t, err)
	assert.Equal(t, OutcomeTimeout, outcome.Kind)
	// The failed attempt is still mirrored into the call log.
	assert.Equal(t, 1, rec.len())
}

func TestSubmitSaleTransportFailureIsNotTimeout(t *testing.T) {
	// Connection refused: server closed before the call.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client, rec := newTestClient(t, srv.URL, time.Second)
	_, err := client.SubmitSale(context.Background(), testTerminal(), testDocument())
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, 1, rec.len())
}

func TestBlockingMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/utilities/get-terminal-blocking-message", r.URL.Path)
		w.Write([]byte(`{"statusCode":0,"remark":"","data":{"isBlocked":true,"blockingReason":"suspicious volume"}}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, time.Second)
	reason, err := client.BlockingMessage(context.Background(), testTerminal())
	assert.NoError(t, err)
	assert.Equal(t, "suspicious volume", reason)
}

func TestUnblockStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/utilities/check-terminal-unblock-status", r.URL.Path)
		w.Write([]byte(`{"statusCode":0,"remark":"","data":{"isUnblocked":true}}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, time.Second)
	cleared, err := client.UnblockStatus(context.Background(), testTerminal())
	assert.NoError(t, err)
	assert.True(t, cleared)
}

func TestUnblockStatusRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"statusCode":-1,"remark":"unknown terminal"}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, time.Second)
	_, err := client.UnblockStatus(context.Background(), testTerminal())
	assert.ErrorIs(t, err, ErrRejected)
}

func TestResubmitSendsStoredPayloadVerbatim(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"statusCode":0,"remark":"ok","data":{"validationURL":"u"}}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, time.Second)
	payload := []byte(`{"invoiceHeader":{"invoiceNumber":"X-Y-Z-W"}}`)
	outcome, err := client.Resubmit(context.Background(), testTerminal(), payload)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, outcome.Kind)
	assert.Equal(t, payload, received)
}
