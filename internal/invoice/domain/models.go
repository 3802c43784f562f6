// Package domain defines the fiscal invoice document exchanged with the
// revenue authority. Field names and casing follow the EIS wire format.
package domain

import "time"

// TimestampLayout is the invoice datetime format the authority expects.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Header identifies the invoice, the seller, and the buyer.
type Header struct {
	InvoiceNumber          string `json:"invoiceNumber"`
	InvoiceDateTime        string `json:"invoiceDateTime"`
	SellerTIN              string `json:"sellerTIN"`
	BuyerTIN               string `json:"buyerTIN"`
	BuyerName              string `json:"buyerName"`
	BuyerAuthorizationCode string `json:"buyerAuthorizationCode"`
	SiteID                 string `json:"siteId"`
	GlobalConfigVersion    int64  `json:"globalConfigVersion"`
	TaxpayerConfigVersion  int64  `json:"taxpayerConfigVersion"`
	TerminalConfigVersion  int64  `json:"terminalConfigVersion"`
	IsReliefSupply         bool   `json:"isReliefSupply"`
	PaymentMethod          string `json:"paymentMethod"`
}

// LineItem is one sold product line. Amounts are tax-inclusive at the
// unit-price level; Total and TotalVAT carry the computed, rounded values.
type LineItem struct {
	ID          int64   `json:"id"`
	ProductCode string  `json:"productCode"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    float64 `json:"quantity"`
	Discount    float64 `json:"discount"`
	Total       float64 `json:"total"`
	TotalVAT    float64 `json:"totalVAT"`
	TaxRateID   string  `json:"taxRateId"`
	IsProduct   bool    `json:"isProduct"`
}

// TaxBreakdownRow aggregates taxable amount and tax per rate.
type TaxBreakdownRow struct {
	RateID        string  `json:"rateId"`
	TaxableAmount float64 `json:"taxableAmount"`
	TaxAmount     float64 `json:"taxAmount"`
}

// Summary carries per-rate totals and, for offline-accepted invoices, the
// locally computed signature.
type Summary struct {
	TaxBreakDown     []TaxBreakdownRow `json:"taxBreakDown"`
	TotalVAT         float64           `json:"totalVAT"`
	OfflineSignature string            `json:"offlineSignature"`
	InvoiceTotal     float64           `json:"invoiceTotal"`
}

// Document is the full invoice as submitted to the authority.
type Document struct {
	InvoiceHeader    Header     `json:"invoiceHeader"`
	InvoiceLineItems []LineItem `json:"invoiceLineItems"`
	InvoiceSummary   Summary    `json:"invoiceSummary"`
}

// FormatTimestamp renders t in the authority's invoice datetime format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
