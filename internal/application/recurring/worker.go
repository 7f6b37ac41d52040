package recurring

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ScheduledDispatcher entrega los correos programados vencidos.
type ScheduledDispatcher interface {
	DispatchScheduled(ctx context.Context, now time.Time) (int, error)
}

// Config parámetros del worker.
type Config struct {
	PollInterval time.Duration
	RunTimeout   time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Minute
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = time.Minute
	}
	return c
}

// Worker corre en segundo plano: genera facturas recurrentes y despacha correos programados.
type Worker struct {
	gen        *Generator
	dispatcher ScheduledDispatcher
	cfg        Config
	now        func() time.Time
	log        zerolog.Logger
}

// NewWorker construye el worker. dispatcher puede ser nil.
func NewWorker(gen *Generator, dispatcher ScheduledDispatcher, cfg Config, opts ...Option) *Worker {
	o := newOptions(opts)
	return &Worker{
		gen:        gen,
		dispatcher: dispatcher,
		cfg:        cfg.withDefaults(),
		now:        o.now,
		log:        o.log.With().Str("component", "recurring.worker").Logger(),
	}
}

// RunForever ejecuta RunOnce al arrancar y en cada tick hasta que ctx se cancela.
func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.log.Info().Dur("interval", w.cfg.PollInterval).Msg("worker iniciado")
	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn().Err(err).Msg("corrida del worker fallida")
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker detenido")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce una pasada: generación de recurrentes de todas las empresas y envíos programados.
func (w *Worker) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.RunTimeout)
	defer cancel()

	now := w.now()
	if _, err := w.gen.GenerateDue(ctx, "", now); err != nil {
		return err
	}
	if w.dispatcher == nil {
		return nil
	}
	sent, err := w.dispatcher.DispatchScheduled(ctx, now)
	if err != nil {
		return err
	}
	if sent > 0 {
		w.log.Info().Int("sent", sent).Msg("correos programados enviados")
	}
	return nil
}
