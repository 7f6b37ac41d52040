package billing

import (
	"time"

	"github.com/rs/zerolog"
)

type options struct {
	now func() time.Time
	log zerolog.Logger
}

// Option configura dependencias secundarias de los casos de uso (reloj, logger).
type Option func(*options)

// WithClock reemplaza time.Now (tests y CLI con --now).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger registra efectos secundarios que no fallan la operación.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

func newOptions(opts []Option) options {
	o := options{now: time.Now, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
