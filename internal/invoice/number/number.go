// Package number generates and verifies authority-facing invoice numbers.
//
// An invoice number is four independently encoded integers joined by "-":
// taxpayer id, terminal position, Julian day of the transaction, and the
// per-terminal transaction counter. The encoding is fiscally significant:
// the authority parses it back, so the format must never change.
package number

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var (
	ErrNegativeValue    = errors.New("negative_value")
	ErrInvalidCharacter = errors.New("invalid_character")
	ErrInvalidFormat    = errors.New("invalid_format")
)

// Encode converts a non-negative integer to the variable-length base64-like
// representation, most significant digit first. Zero encodes to "A".
func Encode(n int64) (string, error) {
	if n < 0 {
		return "", ErrNegativeValue
	}
	if n == 0 {
		return "A", nil
	}
	var b strings.Builder
	digits := make([]byte, 0, 11)
	for n > 0 {
		digits = append(digits, alphabet[n%64])
		n /= 64
	}
	for i := len(digits) - 1; i >= 0; i-- {
		b.WriteByte(digits[i])
	}
	return b.String(), nil
}

// Decode is the inverse of Encode. It exists for verification tooling and
// round-trip tests, not for the sale path.
func Decode(s string) (int64, error) {
	if s == "" {
		return 0, ErrInvalidFormat
	}
	var result int64
	for i := 0; i < len(s); i++ {
		idx := strings.IndexByte(alphabet, s[i])
		if idx < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidCharacter, s[i])
		}
		result = result*64 + int64(idx)
	}
	return result, nil
}

// JulianDay returns the proleptic Julian Day Number for the civil date.
// January and February are treated as months 13 and 14 of the prior year.
func JulianDay(date time.Time) int64 {
	year := date.Year()
	month := int(date.Month())
	day := date.Day()

	if month <= 2 {
		year--
		month += 12
	}

	a := year / 100
	b := 2 - a + a/4

	return int64(365.25*float64(year+4716)) + int64(30.6001*float64(month+1)) + int64(day) + int64(b) - 1524
}

// Invoice builds the invoice number for a transaction. It is a pure function
// of its inputs; distinct (taxpayer, position, date, counter) tuples never
// collide because each field encodes independently.
func Invoice(taxpayerID, position int64, transactionDate time.Time, counter int64) (string, error) {
	fields := [4]int64{taxpayerID, position, JulianDay(transactionDate), counter}
	encoded := make([]string, 0, len(fields))
	for _, f := range fields {
		s, err := Encode(f)
		if err != nil {
			return "", err
		}
		encoded = append(encoded, s)
	}
	return strings.Join(encoded, "-"), nil
}

// Fields holds the decoded components of an invoice number.
type Fields struct {
	TaxpayerID int64
	Position   int64
	JulianDay  int64
	Counter    int64
}

// Parse splits and decodes an invoice number back into its four components.
func Parse(invoiceNumber string) (Fields, error) {
	parts := strings.Split(invoiceNumber, "-")
	if len(parts) != 4 {
		return Fields{}, ErrInvalidFormat
	}
	var decoded [4]int64
	for i, p := range parts {
		v, err := Decode(p)
		if err != nil {
			return Fields{}, err
		}
		decoded[i] = v
	}
	return Fields{
		TaxpayerID: decoded[0],
		Position:   decoded[1],
		JulianDay:  decoded[2],
		Counter:    decoded[3],
	}, nil
}
