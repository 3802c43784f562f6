package domain

import "context"

// Service drives the full sale flow: terminal resolution, tax
// computation, invoice numbering, authority submission, and the offline
// fallback.
type Service interface {
	SubmitSale(ctx context.Context, req SaleRequest) (*SaleResponse, error)
}
