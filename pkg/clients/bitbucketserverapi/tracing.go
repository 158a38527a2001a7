package bitbucketserverapi

import (
	"context"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	"github.com/opentracing/opentracing-go"
)

// NewTracingClient returns a new instance of a tracing Client.
func NewTracingClient(c Client) Client {
	return &tracingClient{c, "bitbucketserverapi"}
}

type tracingClient struct {
	Client Client
	prefix string
}

func (c *tracingClient) SetBuildStatus(ctx context.Context, baseURL string, credentials api.Credentials, commitHash string, status BuildStatus) (response StatusResponse, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(c.prefix, "SetBuildStatus"))
	defer func() { api.FinishSpanWithError(span, err) }()

	span.SetTag("commit", commitHash)
	span.SetTag("state", string(status.State))

	response, err = c.Client.SetBuildStatus(ctx, baseURL, credentials, commitHash, status)
	if response.StatusCode > 0 {
		span.SetTag("http.status_code", response.StatusCode)
	}

	return
}
