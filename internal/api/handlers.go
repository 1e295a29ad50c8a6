package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Arkiv-Network/inf-demo/internal/services"
	"github.com/Arkiv-Network/inf-demo/internal/types"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "EthDemo Backend API",
		"version": Version,
		"endpoints": []string{
			"/collectData",
			"/aggregateData",
			"/v1/blocks/latest",
			"/v1/blocks/{number}",
			"/v1/blocks/{number}/transfers",
			"/v1/stats/{type}",
		},
	})
}

func (s *Server) handleCollectData(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.PollOnce(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to collect data")
		respondError(w, http.StatusInternalServerError, "Failed to process data collection request")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Data collected successfully",
		"stored":  result.Stored,
	})
}

func (s *Server) handleAggregateData(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.AggregateData(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to aggregate data")
		respondError(w, http.StatusInternalServerError, "Failed to aggregate data")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

func (s *Server) handleLatestBlocks(w http.ResponseWriter, r *http.Request) {
	limit := services.DefaultLatestBlocksLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			respondTypedError(w, types.NewBadRequestError("limit must be a positive integer"))
			return
		}
		limit = v
	}

	blocks, err := s.service.GetLatestBlocks(r.Context(), limit)
	if err != nil {
		respondTypedError(w, types.NewInternalServiceError(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": blocks})
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.ParseUint(chi.URLParam(r, "number"), 10, 64)
	if err != nil {
		respondTypedError(w, types.NewBadRequestError("block number must be an unsigned integer"))
		return
	}

	block, err := s.service.GetBlock(r.Context(), number)
	if err != nil {
		if services.IsBlockNotFound(err) {
			respondTypedError(w, types.NewNotFoundError("block not found"))
			return
		}
		respondTypedError(w, types.NewInternalServiceError(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": block})
}

func (s *Server) handleBlockTransfers(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.ParseUint(chi.URLParam(r, "number"), 10, 64)
	if err != nil {
		respondTypedError(w, types.NewBadRequestError("block number must be an unsigned integer"))
		return
	}

	transfers, err := s.service.GetBlockTransfers(r.Context(), number)
	if err != nil {
		if services.IsBlockNotFound(err) {
			respondTypedError(w, types.NewNotFoundError("block not found"))
			return
		}
		respondTypedError(w, types.NewInternalServiceError(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": transfers})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	statsType, err := types.ParseStatsType(chi.URLParam(r, "type"))
	if err != nil {
		respondTypedError(w, types.NewBadRequestError(err.Error()))
		return
	}

	stats, err := s.service.GetStats(r.Context(), statsType)
	if err != nil {
		respondTypedError(w, types.NewInternalServiceError(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": stats})
}
