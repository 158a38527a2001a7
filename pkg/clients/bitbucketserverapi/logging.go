package bitbucketserverapi

import (
	"context"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
)

// NewLoggingClient returns a new instance of a logging Client.
func NewLoggingClient(c Client) Client {
	return &loggingClient{c, "bitbucketserverapi"}
}

type loggingClient struct {
	Client Client
	prefix string
}

func (c *loggingClient) SetBuildStatus(ctx context.Context, baseURL string, credentials api.Credentials, commitHash string, status BuildStatus) (response StatusResponse, err error) {
	defer func() { api.HandleLogError(c.prefix, "Client", "SetBuildStatus", err) }()

	return c.Client.SetBuildStatus(ctx, baseURL, credentials, commitHash, status)
}
