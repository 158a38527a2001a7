package credentials

import (
	"context"
	"time"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	"github.com/go-kit/kit/metrics"
)

// NewMetricsProvider returns a new instance of a metrics Provider.
func NewMetricsProvider(p Provider, requestCount metrics.Counter, requestLatency metrics.Histogram) Provider {
	return &metricsProvider{p, requestCount, requestLatency}
}

type metricsProvider struct {
	Provider       Provider
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
}

func (p *metricsProvider) GetCredentials(ctx context.Context, credentialsRef, targetURL string) (credentials api.Credentials, err error) {
	defer func(begin time.Time) { api.UpdateMetrics(p.requestCount, p.requestLatency, "GetCredentials", begin) }(time.Now())

	return p.Provider.GetCredentials(ctx, credentialsRef, targetURL)
}
