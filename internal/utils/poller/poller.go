package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Poller struct {
	interval    time.Duration
	minInterval time.Duration
	quit        chan struct{}
	stopOnce    sync.Once
	pollMethod  func(ctx context.Context) error
	now         func() time.Time
}

type Option func(*Poller)

// WithMinInterval skips ticks until minInterval has passed since the previous
// poll returned
func WithMinInterval(d time.Duration) Option {
	return func(p *Poller) { p.minInterval = d }
}

func NewPoller(interval time.Duration, pollMethod func(ctx context.Context) error, opts ...Option) *Poller {
	p := &Poller{
		interval:   interval,
		quit:       make(chan struct{}),
		pollMethod: pollMethod,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Info().Msgf("Starting poller with interval %s (min interval %s)", p.interval, p.minInterval)

	var lastRun time.Time
	for {
		select {
		case <-ticker.C:
			if !lastRun.IsZero() && p.now().Sub(lastRun) < p.minInterval {
				continue
			}

			log.Debug().Msg("Executing poll method")
			if err := p.pollMethod(ctx); err != nil {
				log.Error().Err(err).Msg("Error polling")
			} else {
				log.Debug().Msg("Poll method executed successfully")
			}
			lastRun = p.now()
		case <-ctx.Done():
			log.Info().Msg("Poller stopped due to context cancellation")
			return
		case <-p.quit:
			log.Info().Msg("Poller stopped")
			return
		}
	}
}

func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
	})
}
