package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Arkiv-Network/inf-demo/internal/datastore"
	"github.com/Arkiv-Network/inf-demo/internal/db"
	"github.com/Arkiv-Network/inf-demo/internal/types"
	"github.com/Arkiv-Network/inf-demo/internal/utils"
)

// CleanRequest selects entities for deletion either by a timestamp threshold
// or by an exact entity key, never both.
type CleanRequest struct {
	Timestamp     *int64
	StatsType     *types.StatsType
	IncludeBlocks bool
	EntityKey     string
}

func (r *CleanRequest) Validate() error {
	if r.EntityKey != "" {
		if r.Timestamp != nil || r.StatsType != nil {
			return errors.New("entity key cannot be combined with timestamp or type")
		}
		if r.IncludeBlocks {
			return errors.New("entity key cannot be combined with include-blocks")
		}
		return nil
	}
	if r.Timestamp == nil {
		return errors.New("either a timestamp or an entity key is required")
	}
	return nil
}

type CleanSelection struct {
	Entities []*db.Entity
	Hourly   int
	Daily    int
	Blocks   int
}

func (c *CleanSelection) Keys() []string {
	keys := make([]string, 0, len(c.Entities))
	for _, e := range c.Entities {
		keys = append(keys, e.Key)
	}
	return keys
}

func (c *CleanSelection) add(e *db.Entity) {
	c.Entities = append(c.Entities, e)
	dataType, _ := e.StringAttribute(datastore.AttrDataType)
	if dataType == types.DataTypeBlock.String() {
		c.Blocks++
		return
	}
	statsType, _ := e.StringAttribute(datastore.AttrStatsType)
	switch types.StatsType(statsType) {
	case types.StatsHourly:
		c.Hourly++
	case types.StatsDaily:
		c.Daily++
	}
}

// SelectForCleanup resolves the entities a CleanRequest targets. Timestamp
// selection is strictly greater than the threshold.
func (s *Service) SelectForCleanup(ctx context.Context, req *CleanRequest) (*CleanSelection, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	selection := &CleanSelection{}

	if req.EntityKey != "" {
		key, err := utils.NormalizeEntityKey(req.EntityKey)
		if err != nil {
			return nil, err
		}
		entity, err := s.store.GetEntity(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to get entity %s: %w", key, err)
		}
		selection.add(entity)
		return selection, nil
	}

	entities, err := s.store.FindEntitiesAfter(ctx, *req.Timestamp, req.StatsType, req.IncludeBlocks)
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		selection.add(e)
	}

	log.Ctx(ctx).Info().
		Int64("timestamp", *req.Timestamp).
		Int("hourly", selection.Hourly).
		Int("daily", selection.Daily).
		Int("blocks", selection.Blocks).
		Msg("selected entities for cleanup")

	return selection, nil
}

// DeleteSelection removes the selected entities in batches and returns how
// many were deleted
func (s *Service) DeleteSelection(ctx context.Context, selection *CleanSelection) (int, error) {
	deleted, err := s.store.DeleteEntities(ctx, selection.Keys())
	if err != nil {
		return deleted, err
	}
	log.Ctx(ctx).Info().Int("deleted", deleted).Msg("cleanup completed")
	return deleted, nil
}
