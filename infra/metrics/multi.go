package metrics

import coremetrics "github.com/LanderU/rmf-core/core/metrics"

// NewMultiSink is re-exported so wiring that imports infra/metrics (such as
// app/service.go) can build a fanout sink through this package.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *coremetrics.MultiSink {
	return coremetrics.NewMultiSink(sinks...)
}
