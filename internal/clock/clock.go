package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall time so jobs and services stay testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// NewSystemClock returns a Clock backed by time.Now in UTC.
func NewSystemClock() Clock {
	return systemClock{}
}

// Module wires the system clock.
var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
