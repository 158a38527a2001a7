package credentials

import (
	"context"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
)

// NewLoggingProvider returns a new instance of a logging Provider.
func NewLoggingProvider(p Provider) Provider {
	return &loggingProvider{p, "credentials"}
}

type loggingProvider struct {
	Provider Provider
	prefix   string
}

func (p *loggingProvider) GetCredentials(ctx context.Context, credentialsRef, targetURL string) (credentials api.Credentials, err error) {
	defer func() { api.HandleLogError(p.prefix, "Provider", "GetCredentials", err) }()

	return p.Provider.GetCredentials(ctx, credentialsRef, targetURL)
}
