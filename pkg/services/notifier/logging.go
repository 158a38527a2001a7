package notifier

import (
	"context"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
)

// NewLoggingService returns a new instance of a logging Service.
func NewLoggingService(s Service) Service {
	return &loggingService{s, "notifier"}
}

type loggingService struct {
	Service Service
	prefix  string
}

func (s *loggingService) Notify(ctx context.Context, job api.NotifierConfig, build api.BuildMetadata) (sent bool, err error) {
	defer func() { api.HandleLogError(s.prefix, "Service", "Notify", err) }()

	return s.Service.Notify(ctx, job, build)
}

func (s *loggingService) NotifyJob(ctx context.Context, jobName string, build api.BuildMetadata) (sent bool, err error) {
	defer func() { api.HandleLogError(s.prefix, "Service", "NotifyJob", err, api.ErrUnknownJob) }()

	return s.Service.NotifyJob(ctx, jobName, build)
}
