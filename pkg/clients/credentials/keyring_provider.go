package credentials

import (
	"context"
	"encoding/json"

	"github.com/99designs/keyring"
	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	"github.com/pkg/errors"
)

// KeyringItem is the json stored as data of a keyring item
type KeyringItem struct {
	Username string `json:"username,omitempty"`
	Secret   string `json:"secret"`
	Hostname string `json:"hostname,omitempty"`
}

// OpenKeyring opens the os keyring, falling back to an encrypted file store protected by the passphrase
func OpenKeyring(config *api.CredentialsConfig, filePassphrase string) (keyring.Keyring, error) {
	kr, err := keyring.Open(keyring.Config{
		ServiceName: config.KeyringService,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  config.KeyringFileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(filePassphrase),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Failed opening keyring for service %v", config.KeyringService)
	}

	return kr, nil
}

// NewKeyringProvider returns a credentials.Provider reading items from a keyring
func NewKeyringProvider(kr keyring.Keyring) Provider {
	return &keyringProvider{
		keyring: kr,
	}
}

type keyringProvider struct {
	keyring keyring.Keyring
}

func (p *keyringProvider) GetCredentials(ctx context.Context, credentialsRef, targetURL string) (credentials api.Credentials, err error) {
	item, err := p.keyring.Get(credentialsRef)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return credentials, notFound(credentialsRef, "keyring has no item with this key")
		}
		return credentials, errors.Wrapf(err, "Failed retrieving keyring item %v", credentialsRef)
	}

	var keyringItem KeyringItem
	if err = json.Unmarshal(item.Data, &keyringItem); err != nil {
		return credentials, notFound(credentialsRef, "keyring item is not valid json: %v", err)
	}

	if !matchesHostname(keyringItem.Hostname, targetURL) {
		return credentials, notFound(credentialsRef, "keyring item is not valid for %v", api.GetHostname(targetURL))
	}

	if keyringItem.Secret == "" {
		return credentials, notFound(credentialsRef, "keyring item has an empty secret")
	}

	credentials.Username = keyringItem.Username
	if credentials.Username == "" {
		credentials.Username = DefaultSecretTextUsername
	}
	credentials.Secret = keyringItem.Secret

	return credentials, nil
}
