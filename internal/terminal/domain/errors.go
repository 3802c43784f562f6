package domain

import "errors"

var (
	ErrNotFound        = errors.New("terminal_not_found")
	ErrUnknownDevice   = errors.New("unknown_device")
	ErrMissingTaxpayer = errors.New("missing_taxpayer_config")
	ErrBlocked         = errors.New("terminal_blocked")
)
