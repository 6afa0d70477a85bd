package tablegraph

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the instrumentation scope for pipeline metrics.
const MeterName = "github.com/randalmurphal/tablegraph"

type pipelineMetrics struct {
	retries metric.Int64Counter
	stored  metric.Int64Counter
	qcScore metric.Float64Histogram
}

func newPipelineMetrics(mp metric.MeterProvider) (*pipelineMetrics, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter(MeterName)

	var (
		m   pipelineMetrics
		err error
	)

	if m.retries, err = meter.Int64Counter("tablegraph.retries",
		metric.WithDescription("Number of retry stage executions"),
	); err != nil {
		return nil, err
	}

	if m.stored, err = meter.Int64Counter("tablegraph.tables.stored",
		metric.WithDescription("Number of tables persisted"),
	); err != nil {
		return nil, err
	}

	if m.qcScore, err = meter.Float64Histogram("tablegraph.qc.score",
		metric.WithDescription("Quality score of extracted tables"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

func (m *pipelineMetrics) recordRetry(ctx context.Context) {
	m.retries.Add(ctx, 1)
}

func (m *pipelineMetrics) recordStored(ctx context.Context) {
	m.stored.Add(ctx, 1)
}

func (m *pipelineMetrics) recordReport(ctx context.Context, r Report) {
	m.qcScore.Record(ctx, r.Score, metric.WithAttributes(attribute.Bool("issues", len(r.Issues) > 0)))
}
