package domain

import "context"

type Repository interface {
	FindByRateID(ctx context.Context, rateID string) (*TaxRate, error)
	List(ctx context.Context) ([]TaxRate, error)
	Upsert(ctx context.Context, rate *TaxRate) error
}
