package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopImplementations(t *testing.T) {
	ctx := context.Background()

	assert.NotPanics(t, func() {
		var m MetricsRecorder = NoopMetrics{}
		m.RecordNodeExecution(ctx, "n", time.Second, errors.New("x"))
		m.RecordGraphRun(ctx, false, time.Second)
		m.RecordCheckpoint(ctx, "n", 1)
	})

	var s SpanManager = NoopSpanManager{}
	got, span := s.StartRunSpan(ctx, "g", "r")
	assert.Equal(t, ctx, got, "context passes through unchanged")
	assert.False(t, span.IsRecording())

	got, span = s.StartNodeSpan(ctx, "n")
	assert.Equal(t, ctx, got)
	assert.NotPanics(t, func() {
		s.EndSpanWithError(span, errors.New("x"))
		s.AddSpanEvent(ctx, "event")
	})
}
