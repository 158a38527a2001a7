package credentials

import (
	"context"
	"fmt"
	"strings"

	"github.com/99designs/keyring"
	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	"github.com/pkg/errors"
	"k8s.io/client-go/kubernetes"
)

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
)

const (
	CredentialsTypeUsernamePassword = "username-password"
	CredentialsTypeSecretText       = "secret-text"

	// DefaultSecretTextUsername is used for basic auth when a secret text credential has no username
	DefaultSecretTextUsername = "x-token-auth"

	// HostnameAnnotation on a kubernetes secret restricts it to a single bitbucket server
	HostnameAnnotation = "estafette.io/bitbucket-server-hostname"
)

// Provider resolves a credentials reference into a username and secret for a target url
//
//go:generate mockgen -package=credentials -destination ./mock.go -source=provider.go
type Provider interface {
	GetCredentials(ctx context.Context, credentialsRef, targetURL string) (credentials api.Credentials, err error)
}

// NewProvider returns the credentials.Provider for the configured store
func NewProvider(configGetter api.ConfigGetter, kubeClientset kubernetes.Interface, kr keyring.Keyring) (Provider, error) {
	config := configGetter.GetConfig()
	if config == nil || config.Credentials == nil {
		return nil, fmt.Errorf("credentials configuration is missing")
	}

	switch config.Credentials.Store {
	case api.CredentialsStoreConfig:
		return NewConfigProvider(configGetter), nil

	case api.CredentialsStoreKubernetes:
		if kubeClientset == nil {
			return nil, fmt.Errorf("credentials store %v requires a kubernetes client", config.Credentials.Store)
		}
		return NewKubernetesProvider(configGetter, kubeClientset), nil

	case api.CredentialsStoreKeyring:
		if kr == nil {
			return nil, fmt.Errorf("credentials store %v requires an opened keyring", config.Credentials.Store)
		}
		return NewKeyringProvider(kr), nil
	}

	return nil, fmt.Errorf("credentials store %v is not supported", config.Credentials.Store)
}

// matchesHostname is true if a credential isn't scoped to a hostname or the scope equals the target url's host
func matchesHostname(hostname, targetURL string) bool {
	hostname = strings.TrimSpace(hostname)
	if hostname == "" {
		return true
	}

	return strings.EqualFold(hostname, api.GetHostname(targetURL))
}

func notFound(credentialsRef, format string, args ...interface{}) error {
	return errors.Wrapf(ErrCredentialsNotFound, "%v: %v", credentialsRef, fmt.Sprintf(format, args...))
}
