package credentials

import (
	"context"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
)

// NewConfigProvider returns a credentials.Provider for credentials listed in the config file
func NewConfigProvider(configGetter api.ConfigGetter) Provider {
	return &configProvider{
		configGetter: configGetter,
	}
}

type configProvider struct {
	configGetter api.ConfigGetter
}

func (p *configProvider) GetCredentials(ctx context.Context, credentialsRef, targetURL string) (credentials api.Credentials, err error) {
	config := p.configGetter.GetConfig()
	if config == nil || config.Credentials == nil {
		return credentials, notFound(credentialsRef, "no credentials are configured")
	}

	// a reference can list one item per bitbucket server host
	nameMatched := false
	for _, c := range config.Credentials.Items {
		if c == nil || c.Name != credentialsRef {
			continue
		}
		nameMatched = true

		if !matchesHostname(getStringProperty(c.AdditionalProperties, "hostname"), targetURL) {
			continue
		}

		switch c.Type {
		case CredentialsTypeUsernamePassword:
			credentials.Username = getStringProperty(c.AdditionalProperties, "username")
			credentials.Secret = getStringProperty(c.AdditionalProperties, "password")

		case CredentialsTypeSecretText:
			credentials.Username = getStringProperty(c.AdditionalProperties, "username")
			if credentials.Username == "" {
				credentials.Username = DefaultSecretTextUsername
			}
			credentials.Secret = getStringProperty(c.AdditionalProperties, "secret")

		default:
			return credentials, notFound(credentialsRef, "credentials type %v is not supported", c.Type)
		}

		if credentials.Secret == "" {
			return api.Credentials{}, notFound(credentialsRef, "credentials have an empty secret")
		}

		return credentials, nil
	}

	if nameMatched {
		return credentials, notFound(credentialsRef, "credentials are not valid for %v", api.GetHostname(targetURL))
	}

	return credentials, notFound(credentialsRef, "no credentials with this name are configured")
}

func getStringProperty(properties map[string]interface{}, key string) string {
	if properties == nil {
		return ""
	}
	if value, ok := properties[key].(string); ok {
		return value
	}

	return ""
}
