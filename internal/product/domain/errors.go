package domain

import "errors"

var (
	ErrNotFound     = errors.New("product not found")
	ErrInvalidCode  = errors.New("product code is required")
	ErrInvalidPrice = errors.New("product unit price must not be negative")
)
