// Package signing implements the HMAC primitive shared by outbound
// authentication headers and offline invoice signatures.
package signing

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
)

// Sign returns the base64-encoded HMAC-SHA512 of message keyed by secret.
// It is deterministic: the same message and secret always reproduce the
// same signature, which is what makes offline invoices auditable later.
func Sign(message, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches Sign(message, secret) without
// leaking timing information.
func Verify(message, secret, signature string) bool {
	expected := Sign(message, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// OfflineInvoice signs the fields that identify an invoice accepted while
// the authority was unreachable: invoice number, line item count, and the
// header's own invoiceDateTime string. Signing the stored rendering lets
// an auditor verify straight from the queued payload.
func OfflineInvoice(invoiceNumber string, lineItemCount int, invoiceDateTime, secret string) string {
	message := fmt.Sprintf("%s%d%s", invoiceNumber, lineItemCount, invoiceDateTime)
	return Sign(message, secret)
}

// ActivationHeader signs a terminal's activation code for the x-signature
// header used when confirming terminal state with the authority.
func ActivationHeader(activationCode, secret string) string {
	return Sign(activationCode, secret)
}
