package credentials

import (
	"context"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	"github.com/opentracing/opentracing-go"
)

// NewTracingProvider returns a new instance of a tracing Provider.
func NewTracingProvider(p Provider) Provider {
	return &tracingProvider{p, "credentials"}
}

type tracingProvider struct {
	Provider Provider
	prefix   string
}

func (p *tracingProvider) GetCredentials(ctx context.Context, credentialsRef, targetURL string) (credentials api.Credentials, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(p.prefix, "GetCredentials"))
	defer func() { api.FinishSpanWithError(span, err) }()

	span.SetTag("credentials-ref", credentialsRef)

	return p.Provider.GetCredentials(ctx, credentialsRef, targetURL)
}
