package domain

import "context"

type Repository interface {
	FindByCode(ctx context.Context, code string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Upsert(ctx context.Context, product *Product) error
}
