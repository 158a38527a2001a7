package notifier

import (
	"context"
	"time"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	"github.com/go-kit/kit/metrics"
)

// NewMetricsService returns a new instance of a metrics Service.
func NewMetricsService(s Service, requestCount metrics.Counter, requestLatency metrics.Histogram, notificationCount metrics.Counter) Service {
	return &metricsService{s, requestCount, requestLatency, notificationCount}
}

type metricsService struct {
	Service           Service
	requestCount      metrics.Counter
	requestLatency    metrics.Histogram
	notificationCount metrics.Counter
}

func (s *metricsService) Notify(ctx context.Context, job api.NotifierConfig, build api.BuildMetadata) (sent bool, err error) {
	defer func(begin time.Time) {
		api.UpdateMetrics(s.requestCount, s.requestLatency, "Notify", begin)
		s.countNotification(build, sent, err)
	}(time.Now())

	return s.Service.Notify(ctx, job, build)
}

func (s *metricsService) NotifyJob(ctx context.Context, jobName string, build api.BuildMetadata) (sent bool, err error) {
	defer func(begin time.Time) {
		api.UpdateMetrics(s.requestCount, s.requestLatency, "NotifyJob", begin)
		s.countNotification(build, sent, err)
	}(time.Now())

	return s.Service.NotifyJob(ctx, jobName, build)
}

func (s *metricsService) countNotification(build api.BuildMetadata, sent bool, err error) {
	s.notificationCount.With("result", string(build.Result), "outcome", string(GetNotificationOutcome(sent, err))).Add(1)
}
