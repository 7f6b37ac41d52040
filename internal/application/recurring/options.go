package recurring

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configura los componentes del paquete.
type Option func(*options)

type options struct {
	now func() time.Time
	log zerolog.Logger
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger asigna el logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

func newOptions(opts []Option) options {
	o := options{now: time.Now, log: zerolog.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
