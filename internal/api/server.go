package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Arkiv-Network/inf-demo/internal/config"
	"github.com/Arkiv-Network/inf-demo/internal/services"
	"github.com/Arkiv-Network/inf-demo/internal/types"
)

const (
	Version         = "1.0.0"
	shutdownTimeout = 5 * time.Second
)

// Service is the part of services.Service exposed over HTTP
type Service interface {
	PollOnce(ctx context.Context) (*services.PollResult, error)
	AggregateData(ctx context.Context) (*services.AggregateDataPublic, error)
	GetLatestBlocks(ctx context.Context, limit int) ([]*services.BlockPublic, error)
	GetBlock(ctx context.Context, number uint64) (*services.BlockPublic, error)
	GetBlockTransfers(ctx context.Context, number uint64) ([]*services.GLMTransferPublic, error)
	GetStats(ctx context.Context, statsType types.StatsType) ([]*services.StatsPublic, error)
}

type Server struct {
	cfg     *config.ServerConfig
	service Service
}

func New(cfg *config.ServerConfig, service Service) *Server {
	return &Server{cfg: cfg, service: service}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(recoverer)
	r.Use(corsHandler(s.cfg.AllowedOrigins))
	r.Use(requestMetrics)

	r.Get("/", s.handleIndex)
	r.Get("/collectData", s.handleCollectData)
	r.Get("/aggregateData", s.handleAggregateData)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/blocks/latest", s.handleLatestBlocks)
		r.Get("/blocks/{number}", s.handleBlock)
		r.Get("/blocks/{number}/transfers", s.handleBlockTransfers)
		r.Get("/stats/{type}", s.handleStats)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

// ListenAndServe serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shut down http server")
		}
	}()

	log.Info().Str("address", server.Addr).Msg("starting http server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
