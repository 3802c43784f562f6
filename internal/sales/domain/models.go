package domain

// PaymentMethod is the closed set of payment methods the authority
// accepts on an invoice.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentCheck        PaymentMethod = "check"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentMobileMoney  PaymentMethod = "mobile_money"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentCheck, PaymentBankTransfer, PaymentMobileMoney:
		return true
	}
	return false
}

// SaleLine is one requested line item. Unit price and description come
// from the product catalog, not the request.
type SaleLine struct {
	ProductCode string  `json:"productCode" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required"`
	Discount    float64 `json:"discount"`

	// TaxRateID overrides the product's configured rate when set.
	TaxRateID string `json:"taxRateId"`
}

// SaleRequest is a point-of-sale submission. DeviceID is resolved from
// the X-Device-Id header, not the body.
type SaleRequest struct {
	DeviceID string `json:"-"`

	BuyerTIN               string        `json:"buyerTIN"`
	BuyerName              string        `json:"buyerName"`
	BuyerAuthorizationCode string        `json:"buyerAuthorizationCode"`
	PaymentMethod          PaymentMethod `json:"paymentMethod" binding:"required"`
	IsReliefSupply         bool          `json:"isReliefSupply"`

	Lines []SaleLine `json:"lineItems" binding:"required"`
}

// SaleResponse reports the fiscal result of a sale. For sales accepted
// while the authority was unreachable, Offline is true, Remark explains
// the degraded mode, and OfflineSignature is the locally computed
// validation reference.
type SaleResponse struct {
	InvoiceNumber   string `json:"invoiceNumber"`
	InvoiceDateTime string `json:"invoiceDateTime"`

	Remark           string `json:"remark"`
	ValidationURL    string `json:"validationURL,omitempty"`
	OfflineSignature string `json:"offlineSignature,omitempty"`
	Offline          bool   `json:"offline"`

	InvoiceTotal float64 `json:"invoiceTotal"`
	TotalVAT     float64 `json:"totalVAT"`

	ShouldDownloadLatestConfig bool `json:"shouldDownloadLatestConfig"`
}
