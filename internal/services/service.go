package services

import (
	"context"
	"sync"
	"time"

	"github.com/Arkiv-Network/inf-demo/internal/cache"
	"github.com/Arkiv-Network/inf-demo/internal/clients/ethclient"
	"github.com/Arkiv-Network/inf-demo/internal/config"
	"github.com/Arkiv-Network/inf-demo/internal/datastore"
	"github.com/Arkiv-Network/inf-demo/internal/observability/metrics"
	"github.com/Arkiv-Network/inf-demo/internal/queue"
	"github.com/Arkiv-Network/inf-demo/internal/utils/poller"
)

const (
	hourSeconds int64 = 3600
	daySeconds  int64 = 86400
)

type Service struct {
	// mu serializes the operations that read the store and then write to it:
	// polling, backfill and aggregation
	mu sync.Mutex

	cfg          *config.Config
	store        *datastore.Store
	eth          ethclient.EthInterface
	queueManager *queue.QueueManager
	cache        cache.Cache
	now          func() time.Time
}

func NewService(
	cfg *config.Config,
	store *datastore.Store,
	eth ethclient.EthInterface,
	qm *queue.QueueManager,
	c cache.Cache,
) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{
		cfg:          cfg,
		store:        store,
		eth:          eth,
		queueManager: qm,
		cache:        c,
		now:          time.Now,
	}
}

// StartRealtimePoller runs PollOnce on the configured tick until ctx is done
func (s *Service) StartRealtimePoller(ctx context.Context) *poller.Poller {
	realtimePoller := poller.NewPoller(
		s.cfg.Poller.PollInterval,
		metrics.RecordPollerDuration("realtime", func(ctx context.Context) error {
			_, err := s.PollOnce(ctx)
			return err
		}),
		poller.WithMinInterval(s.cfg.Poller.MinCollectionInterval),
	)
	go realtimePoller.Start(ctx)
	return realtimePoller
}

// floorTo aligns ts down to a multiple of size, also for negative values
func floorTo(ts, size int64) int64 {
	q := ts / size
	if ts%size != 0 && ts < 0 {
		q--
	}
	return q * size
}
