package notifier

import (
	"context"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	"github.com/opentracing/opentracing-go"
)

// NewTracingService returns a new instance of a tracing Service.
func NewTracingService(s Service) Service {
	return &tracingService{s, "notifier"}
}

type tracingService struct {
	Service Service
	prefix  string
}

func (s *tracingService) Notify(ctx context.Context, job api.NotifierConfig, build api.BuildMetadata) (sent bool, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(s.prefix, "Notify"))
	defer func() { api.FinishSpanWithError(span, err) }()

	span.SetTag("job", job.Name)
	span.SetTag("commit", build.CommitHash)

	return s.Service.Notify(ctx, job, build)
}

func (s *tracingService) NotifyJob(ctx context.Context, jobName string, build api.BuildMetadata) (sent bool, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(s.prefix, "NotifyJob"))
	defer func() { api.FinishSpanWithError(span, err) }()

	span.SetTag("job", jobName)
	span.SetTag("commit", build.CommitHash)

	return s.Service.NotifyJob(ctx, jobName, build)
}
