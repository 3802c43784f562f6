// Package service computes tax-inclusive line amounts and per-rate
// breakdowns for fiscal invoices.
package service

import (
	"math"
	"sort"

	taxdomain "github.com/kwachapos/fiscalgate/internal/tax/domain"
)

// LineAmounts are the computed values for a single line item.
// TaxableAmount and TaxAmount are rounded to 2 decimal places; Amount is
// the rounded tax-inclusive total for the line.
type LineAmounts struct {
	SellingPrice  float64
	Amount        float64
	TaxableAmount float64
	TaxAmount     float64
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeLine derives amounts for one line item from its tax-inclusive unit
// price. A zero rate degenerates to taxableAmount == amount with no tax.
// A discount exceeding the unit price is invalid: it would produce a
// negative selling price.
func ComputeLine(unitPrice, quantity, discount, ratePercent float64) (LineAmounts, error) {
	if discount > unitPrice {
		return LineAmounts{}, taxdomain.ErrDiscountExceedsPrice
	}
	if quantity < 0 || discount < 0 || unitPrice < 0 {
		return LineAmounts{}, taxdomain.ErrInvalidAmount
	}
	if ratePercent < 0 {
		return LineAmounts{}, taxdomain.ErrInvalidRate
	}

	sellingPrice := unitPrice - discount
	amount := sellingPrice * quantity

	taxableAmount := amount
	if ratePercent > 0 {
		taxableAmount = amount / (1 + ratePercent/100)
	}
	taxAmount := amount - taxableAmount

	return LineAmounts{
		SellingPrice:  sellingPrice,
		Amount:        Round2(amount),
		TaxableAmount: Round2(taxableAmount),
		TaxAmount:     Round2(taxAmount),
	}, nil
}

// RateTotals accumulates rounded per-line values for a single rate.
type RateTotals struct {
	RateID        string
	Ordinal       int
	TaxableAmount float64
	TaxAmount     float64
}

// Breakdown aggregates line amounts per rate across an invoice. Totals are
// running sums of already-rounded line values; they are never recomputed
// from the aggregate, so cent-level discrepancies across rates can occur
// and are accepted.
type Breakdown struct {
	rates  map[string]*RateTotals
	order  []string
	total  float64
	vat    float64
}

func NewBreakdown() *Breakdown {
	return &Breakdown{rates: make(map[string]*RateTotals)}
}

// Add records one computed line against its rate.
func (b *Breakdown) Add(rate *taxdomain.TaxRate, amounts LineAmounts) {
	totals, ok := b.rates[rate.RateID]
	if !ok {
		totals = &RateTotals{RateID: rate.RateID, Ordinal: rate.Ordinal}
		b.rates[rate.RateID] = totals
		b.order = append(b.order, rate.RateID)
	}
	totals.TaxableAmount = Round2(totals.TaxableAmount + amounts.TaxableAmount)
	totals.TaxAmount = Round2(totals.TaxAmount + amounts.TaxAmount)

	b.total = Round2(b.total + amounts.Amount)
	b.vat = Round2(b.vat + amounts.TaxAmount)
}

// Rows returns per-rate totals ordered by rate ordinal, then rate id.
func (b *Breakdown) Rows() []RateTotals {
	rows := make([]RateTotals, 0, len(b.order))
	for _, id := range b.order {
		rows = append(rows, *b.rates[id])
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Ordinal != rows[j].Ordinal {
			return rows[i].Ordinal < rows[j].Ordinal
		}
		return rows[i].RateID < rows[j].RateID
	})
	return rows
}

// InvoiceTotal is the running sum of rounded line amounts.
func (b *Breakdown) InvoiceTotal() float64 { return b.total }

// TotalVAT is the running sum of rounded line tax amounts.
func (b *Breakdown) TotalVAT() float64 { return b.vat }
