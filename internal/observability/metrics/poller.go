package metrics

import (
	"context"
	"time"

	"github.com/Arkiv-Network/inf-demo/internal/observability/tracing"
)

// pollerFunction alias is private and should be used only here
type pollerFunction = func(ctx context.Context) error

// RecordPollerDuration measures every run of f and gives it a fresh traceId
func RecordPollerDuration(typ string, f pollerFunction) pollerFunction {
	return func(ctx context.Context) error {
		ctx = tracing.InjectTraceID(ctx)

		startTime := time.Now()
		err := f(ctx)
		duration := time.Since(startTime).Seconds()

		pollerDurationHistogram.WithLabelValues(typ, outcome(err != nil).String()).Observe(duration)

		return err
	}
}
