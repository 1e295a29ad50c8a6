package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

type SpanResult struct {
	HoursAttempted int
	HoursPersisted int
	DaysAttempted  int
	DaysPersisted  int
	Failed         int
}

// AggregateSpan aggregates every hour and day bucket overlapping [start, end].
// Buckets ending in the future are skipped. A failing bucket is logged and
// does not stop the remaining ones.
func (s *Service) AggregateSpan(ctx context.Context, start, end int64) (*SpanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregateSpan(ctx, start, end)
}

func (s *Service) aggregateSpan(ctx context.Context, start, end int64) (*SpanResult, error) {
	if end < start {
		return nil, fmt.Errorf("invalid span: end %d is before start %d", end, start)
	}
	log := log.Ctx(ctx)
	now := s.now().Unix()
	result := &SpanResult{}

	for h := floorTo(start, hourSeconds); h <= floorTo(end, hourSeconds); h += hourSeconds {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		bucketEnd := h + hourSeconds
		if bucketEnd > now {
			continue
		}
		result.HoursAttempted++
		agg, err := s.aggregateHour(ctx, &bucketEnd)
		if err != nil {
			result.Failed++
			log.Error().Err(err).Int64("bucket", bucketEnd).Msg("failed to aggregate hour")
			continue
		}
		if agg.Persisted() {
			result.HoursPersisted++
		}
	}

	for d := floorTo(start, daySeconds); d <= floorTo(end, daySeconds); d += daySeconds {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		bucketEnd := d + daySeconds
		if bucketEnd > now {
			continue
		}
		result.DaysAttempted++
		agg, err := s.aggregateDay(ctx, &bucketEnd)
		if err != nil {
			result.Failed++
			log.Error().Err(err).Int64("bucket", bucketEnd).Msg("failed to aggregate day")
			continue
		}
		if agg.Persisted() {
			result.DaysPersisted++
		}
	}

	log.Info().
		Int64("start", start).
		Int64("end", end).
		Int("hours_attempted", result.HoursAttempted).
		Int("hours_persisted", result.HoursPersisted).
		Int("days_attempted", result.DaysAttempted).
		Int("days_persisted", result.DaysPersisted).
		Int("failed", result.Failed).
		Msg("span aggregation finished")

	return result, nil
}

// FeedStats aggregates the configured lookback period up to now
func (s *Service) FeedStats(ctx context.Context) (*SpanResult, error) {
	now := s.now()
	return s.AggregateSpan(ctx, now.Add(-s.cfg.Aggregator.StatsLookback).Unix(), now.Unix())
}
