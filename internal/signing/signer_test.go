package signing

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"testing"
	"time"

	invoicedomain "github.com/kwachapos/fiscalgate/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
)

func TestSignIsDeterministic(t *testing.T) {
	a := Sign("hello", "secret")
	b := Sign("hello", "secret")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Sign("hello", "other-secret"))
	assert.NotEqual(t, a, Sign("hello.", "secret"))
}

func TestSignMatchesReference(t *testing.T) {
	mac := hmac.New(sha512.New, []byte("terminal-secret"))
	mac.Write([]byte("payload"))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, Sign("payload", "terminal-secret"))
}

func TestVerify(t *testing.T) {
	sig := Sign("message", "key")
	assert.True(t, Verify("message", "key", sig))
	assert.False(t, Verify("message", "key", sig+"x"))
	assert.False(t, Verify("message", "wrong", sig))
}

func TestOfflineInvoiceSignatureReproducible(t *testing.T) {
	at := invoicedomain.FormatTimestamp(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))

	first := OfflineInvoice("BA-B-kjJh-C", 3, at, "secret")
	second := OfflineInvoice("BA-B-kjJh-C", 3, at, "secret")
	assert.Equal(t, first, second)

	// The signed message concatenates the number, the count, and the
	// header's own datetime rendering, so the stored payload is enough
	// to verify against.
	assert.Equal(t, Sign("BA-B-kjJh-C3"+at, "secret"), first)

	// Any field change must change the signature.
	assert.NotEqual(t, first, OfflineInvoice("BA-B-kjJh-D", 3, at, "secret"))
	assert.NotEqual(t, first, OfflineInvoice("BA-B-kjJh-C", 4, at, "secret"))
	other := invoicedomain.FormatTimestamp(time.Date(2026, 8, 31, 12, 0, 1, 0, time.UTC))
	assert.NotEqual(t, first, OfflineInvoice("BA-B-kjJh-C", 3, other, "secret"))
}

func TestActivationHeader(t *testing.T) {
	assert.Equal(t, Sign("ACT-123", "s"), ActivationHeader("ACT-123", "s"))
}
