package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Arkiv-Network/inf-demo/internal/cache"
	"github.com/Arkiv-Network/inf-demo/internal/clients/ethclient"
	"github.com/Arkiv-Network/inf-demo/internal/config"
	"github.com/Arkiv-Network/inf-demo/internal/datastore"
	"github.com/Arkiv-Network/inf-demo/internal/db"
	"github.com/Arkiv-Network/inf-demo/internal/db/memory"
	dbmodel "github.com/Arkiv-Network/inf-demo/internal/db/model"
	"github.com/Arkiv-Network/inf-demo/internal/observability/tracing"
	"github.com/Arkiv-Network/inf-demo/internal/queue"
	"github.com/Arkiv-Network/inf-demo/internal/services"
)

const closeTimeout = 5 * time.Second

// app holds the wired dependencies of a command run
type app struct {
	cfg     *config.Config
	store   *datastore.Store
	service *services.Service
	closers []func(ctx context.Context) error
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	// log.Ctx falls back to this logger for contexts without one
	zerolog.DefaultContextLogger = &log.Logger
}

func newApp(ctx context.Context) (*app, error) {
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("error while loading config file %s: %w", cfgPath, err)
	}
	setupLogger(cfg)

	a := &app{cfg: cfg}

	shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, shutdownTracer)

	var dbClient db.DbInterface
	switch cfg.Db.Type {
	case config.DbTypeMemory:
		log.Warn().Msg("using the in-memory entity store, data is lost on exit")
		dbClient = memory.New(
			memory.WithOwner(cfg.Db.Owner),
			memory.WithPageLimit(cfg.Db.QueryPageLimit),
		)
	default:
		if err := dbmodel.Setup(ctx, &cfg.Db); err != nil {
			a.close()
			return nil, fmt.Errorf("error while setting up db model: %w", err)
		}
		mongoClient, err := db.New(ctx, cfg.Db)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("error while creating db client: %w", err)
		}
		a.closers = append(a.closers, mongoClient.Close)
		dbClient = mongoClient
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	policy := datastore.SkipInvalid
	if cfg.Aggregator.ParsePolicy == config.ParsePolicyFail {
		policy = datastore.FailOnInvalid
	}
	a.store = datastore.New(dbClient,
		datastore.WithParsePolicy(policy),
		datastore.WithBatchSize(cfg.Aggregator.StoreBatchSize),
		datastore.WithOwner(cfg.Db.Owner),
	)

	ethClient, err := ethclient.New(ctx, &cfg.Eth)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("error while creating eth client: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error {
		ethClient.Close()
		return nil
	})

	qm, err := queue.NewQueueManager(cfg.Queue)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("error while creating queue manager: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error {
		qm.Shutdown()
		return nil
	})

	readCache, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("error while creating cache: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error {
		return readCache.Close()
	})

	a.service = services.NewService(cfg, a.store, ethclient.NewEthClientWithMetrics(ethClient), qm, readCache)
	return a, nil
}

// close releases resources in reverse order of creation
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			log.Warn().Err(err).Msg("failed to release resource")
		}
	}
}
