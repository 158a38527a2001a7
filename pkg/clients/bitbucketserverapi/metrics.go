package bitbucketserverapi

import (
	"context"
	"time"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	"github.com/go-kit/kit/metrics"
)

// NewMetricsClient returns a new instance of a metrics Client.
func NewMetricsClient(c Client, requestCount metrics.Counter, requestLatency metrics.Histogram) Client {
	return &metricsClient{c, requestCount, requestLatency}
}

type metricsClient struct {
	Client         Client
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
}

func (c *metricsClient) SetBuildStatus(ctx context.Context, baseURL string, credentials api.Credentials, commitHash string, status BuildStatus) (response StatusResponse, err error) {
	defer func(begin time.Time) { api.UpdateMetrics(c.requestCount, c.requestLatency, "SetBuildStatus", begin) }(time.Now())

	return c.Client.SetBuildStatus(ctx, baseURL, credentials, commitHash, status)
}
