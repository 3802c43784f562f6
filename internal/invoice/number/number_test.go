package number

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeKnownValues(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "a"},
		{51, "z"},
		{52, "0"},
		{61, "9"},
		{62, "+"},
		{63, "/"},
		{64, "BA"},
		{4095, "//"},
		{4096, "BAA"},
	}
	for _, tc := range cases {
		got, err := Encode(tc.in)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, got, "encode %d", tc.in)
	}
}

func TestEncodeRejectsNegative(t *testing.T) {
	_, err := Encode(-1)
	assert.ErrorIs(t, err, ErrNegativeValue)
}

func TestDecodeRoundTrip(t *testing.T) {
	values := []int64{0, 1, 63, 64, 65, 4095, 4096, 123456789, 1<<40 + 17}
	for _, v := range values {
		encoded, err := Encode(v)
		assert.NoError(t, err)
		decoded, err := Decode(encoded)
		assert.NoError(t, err)
		assert.Equal(t, v, decoded)
	}
}

func TestDecodeRejectsInvalidInput(t *testing.T) {
	_, err := Decode("")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = Decode("AB*")
	assert.ErrorIs(t, err, ErrInvalidCharacter)
}

func TestJulianDay(t *testing.T) {
	// Known JDN anchors for the civil calendar algorithm.
	cases := []struct {
		date time.Time
		want int64
	}{
		{time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 2451545},
		{time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), 2440588},
		{time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), 2460749},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, JulianDay(tc.date), "julian day of %s", tc.date)
	}
}

func TestJulianDayJanuaryFebruaryAdjustment(t *testing.T) {
	// Jan 31 and Feb 1 must be consecutive across the month-13/14 adjustment.
	jan := JulianDay(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	feb := JulianDay(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, jan+1, feb)
}

func TestInvoiceFormat(t *testing.T) {
	date := time.Date(2000, 1, 1, 10, 30, 0, 0, time.UTC)
	got, err := Invoice(0, 1, date, 2)
	assert.NoError(t, err)

	julianEncoded, err := Encode(2451545)
	assert.NoError(t, err)
	assert.Equal(t, "A-B-"+julianEncoded+"-C", got)
}

func TestInvoiceParseRoundTrip(t *testing.T) {
	date := time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)
	invoice, err := Invoice(987654321, 7, date, 1042)
	assert.NoError(t, err)

	fields, err := Parse(invoice)
	assert.NoError(t, err)
	assert.Equal(t, int64(987654321), fields.TaxpayerID)
	assert.Equal(t, int64(7), fields.Position)
	assert.Equal(t, JulianDay(date), fields.JulianDay)
	assert.Equal(t, int64(1042), fields.Counter)
}

func TestInvoiceDistinctTuplesDoNotCollide(t *testing.T) {
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	seen := make(map[string]struct{})
	for taxpayer := int64(0); taxpayer < 8; taxpayer++ {
		for position := int64(0); position < 8; position++ {
			for counter := int64(0); counter < 8; counter++ {
				inv, err := Invoice(taxpayer, position, date, counter)
				assert.NoError(t, err)
				_, dup := seen[inv]
				assert.False(t, dup, "collision at %s", inv)
				seen[inv] = struct{}{}
			}
		}
	}
}
