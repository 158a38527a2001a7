package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	contracts "github.com/estafette/estafette-ci-contracts"
	"github.com/go-kit/kit/metrics/discard"
	gomock "github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	v1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func getConfigWithCredentials(items ...*contracts.CredentialConfig) *api.Config {
	config := &api.Config{
		Credentials: &api.CredentialsConfig{
			Namespace: "ci",
			Items:     items,
		},
	}
	config.SetDefaults()

	return config
}

func TestConfigProviderGetCredentials(t *testing.T) {
	t.Run("ReturnsUsernameAndPasswordForUsernamePasswordCredentials", func(t *testing.T) {

		config := getConfigWithCredentials(&contracts.CredentialConfig{
			Name: "bitbucket-bot",
			Type: "username-password",
			AdditionalProperties: map[string]interface{}{
				"username": "bot",
				"password": "s3cr3t",
			},
		})
		provider := NewConfigProvider(config)

		// act
		credentials, err := provider.GetCredentials(context.Background(), "bitbucket-bot", "https://bb.example.com")

		assert.Nil(t, err)
		assert.Equal(t, api.Credentials{Username: "bot", Secret: "s3cr3t"}, credentials)
	})

	t.Run("ReturnsDefaultUsernameForSecretTextCredentials", func(t *testing.T) {

		config := getConfigWithCredentials(&contracts.CredentialConfig{
			Name: "bitbucket-token",
			Type: "secret-text",
			AdditionalProperties: map[string]interface{}{
				"secret": "token",
			},
		})
		provider := NewConfigProvider(config)

		// act
		credentials, err := provider.GetCredentials(context.Background(), "bitbucket-token", "https://bb.example.com")

		assert.Nil(t, err)
		assert.Equal(t, api.Credentials{Username: DefaultSecretTextUsername, Secret: "token"}, credentials)
	})

	t.Run("ReturnsErrCredentialsNotFoundForUnknownReference", func(t *testing.T) {

		config := getConfigWithCredentials(&contracts.CredentialConfig{
			Name:                 "bitbucket-bot",
			Type:                 "username-password",
			AdditionalProperties: map[string]interface{}{"username": "bot", "password": "s3cr3t"},
		})
		provider := NewConfigProvider(config)

		// act
		_, err := provider.GetCredentials(context.Background(), "other-bot", "https://bb.example.com")

		assert.True(t, errors.Is(err, ErrCredentialsNotFound))
	})

	t.Run("ReturnsCredentialsIfHostnameMatchesTargetUrl", func(t *testing.T) {

		config := getConfigWithCredentials(&contracts.CredentialConfig{
			Name:                 "bitbucket-bot",
			Type:                 "username-password",
			AdditionalProperties: map[string]interface{}{"username": "bot", "password": "s3cr3t", "hostname": "BB.example.com"},
		})
		provider := NewConfigProvider(config)

		// act
		credentials, err := provider.GetCredentials(context.Background(), "bitbucket-bot", "https://bb.example.com:7990/rest/build-status/1.0/commits/abc")

		assert.Nil(t, err)
		assert.Equal(t, "bot", credentials.Username)
	})

	t.Run("ReturnsErrCredentialsNotFoundIfHostnameDoesNotMatchTargetUrl", func(t *testing.T) {

		config := getConfigWithCredentials(&contracts.CredentialConfig{
			Name:                 "bitbucket-bot",
			Type:                 "username-password",
			AdditionalProperties: map[string]interface{}{"username": "bot", "password": "s3cr3t", "hostname": "bb.example.com"},
		})
		provider := NewConfigProvider(config)

		// act
		_, err := provider.GetCredentials(context.Background(), "bitbucket-bot", "https://other.example.com")

		assert.True(t, errors.Is(err, ErrCredentialsNotFound))
	})

	t.Run("ReturnsCredentialsForMatchingHostnameIfReferenceIsListedPerHost", func(t *testing.T) {

		config := getConfigWithCredentials(
			&contracts.CredentialConfig{
				Name:                 "bot",
				Type:                 "username-password",
				AdditionalProperties: map[string]interface{}{"username": "bot-one", "password": "s3cr3t-one", "hostname": "bb-one.example.com"},
			},
			&contracts.CredentialConfig{
				Name:                 "bot",
				Type:                 "username-password",
				AdditionalProperties: map[string]interface{}{"username": "bot-two", "password": "s3cr3t-two", "hostname": "bb-two.example.com"},
			},
		)
		assert.Nil(t, config.Validate())
		provider := NewConfigProvider(config)

		// act
		credentials, err := provider.GetCredentials(context.Background(), "bot", "https://bb-two.example.com/rest/build-status/1.0/commits/abc123")

		assert.Nil(t, err)
		assert.Equal(t, "bot-two", credentials.Username)
		assert.Equal(t, "s3cr3t-two", credentials.Secret)
	})

	t.Run("ReturnsErrCredentialsNotFoundForUnsupportedType", func(t *testing.T) {

		config := getConfigWithCredentials(&contracts.CredentialConfig{
			Name:                 "bitbucket-bot",
			Type:                 "ssh-key",
			AdditionalProperties: map[string]interface{}{"key": "..."},
		})
		provider := NewConfigProvider(config)

		// act
		_, err := provider.GetCredentials(context.Background(), "bitbucket-bot", "https://bb.example.com")

		assert.True(t, errors.Is(err, ErrCredentialsNotFound))
	})

	t.Run("ReturnsErrCredentialsNotFoundForEmptyPassword", func(t *testing.T) {

		config := getConfigWithCredentials(&contracts.CredentialConfig{
			Name:                 "bitbucket-bot",
			Type:                 "username-password",
			AdditionalProperties: map[string]interface{}{"username": "bot"},
		})
		provider := NewConfigProvider(config)

		// act
		_, err := provider.GetCredentials(context.Background(), "bitbucket-bot", "https://bb.example.com")

		assert.True(t, errors.Is(err, ErrCredentialsNotFound))
	})
}

func TestKubernetesProviderGetCredentials(t *testing.T) {
	t.Run("ReturnsUsernameAndPasswordFromSecret", func(t *testing.T) {

		kubeClientset := fake.NewSimpleClientset(&v1.Secret{
			ObjectMeta: metav1.ObjectMeta{Name: "bitbucket-bot", Namespace: "ci"},
			Data: map[string][]byte{
				"username": []byte("bot"),
				"password": []byte("s3cr3t"),
			},
		})
		provider := NewKubernetesProvider(getConfigWithCredentials(), kubeClientset)

		// act
		credentials, err := provider.GetCredentials(context.Background(), "bitbucket-bot", "https://bb.example.com")

		assert.Nil(t, err)
		assert.Equal(t, api.Credentials{Username: "bot", Secret: "s3cr3t"}, credentials)
	})

	t.Run("ReturnsDefaultUsernameForSecretKey", func(t *testing.T) {

		kubeClientset := fake.NewSimpleClientset(&v1.Secret{
			ObjectMeta: metav1.ObjectMeta{Name: "bitbucket-token", Namespace: "ci"},
			Data: map[string][]byte{
				"secret": []byte("token"),
			},
		})
		provider := NewKubernetesProvider(getConfigWithCredentials(), kubeClientset)

		// act
		credentials, err := provider.GetCredentials(context.Background(), "bitbucket-token", "https://bb.example.com")

		assert.Nil(t, err)
		assert.Equal(t, api.Credentials{Username: DefaultSecretTextUsername, Secret: "token"}, credentials)
	})

	t.Run("ReturnsErrCredentialsNotFoundIfSecretIsInOtherNamespace", func(t *testing.T) {

		kubeClientset := fake.NewSimpleClientset(&v1.Secret{
			ObjectMeta: metav1.ObjectMeta{Name: "bitbucket-bot", Namespace: "default"},
			Data: map[string][]byte{
				"username": []byte("bot"),
				"password": []byte("s3cr3t"),
			},
		})
		provider := NewKubernetesProvider(getConfigWithCredentials(), kubeClientset)

		// act
		_, err := provider.GetCredentials(context.Background(), "bitbucket-bot", "https://bb.example.com")

		assert.True(t, errors.Is(err, ErrCredentialsNotFound))
	})

	t.Run("ReturnsErrCredentialsNotFoundIfSecretCannotBeRead", func(t *testing.T) {

		kubeClientset := fake.NewSimpleClientset()
		kubeClientset.PrependReactor("get", "secrets", func(action k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, k8serrors.NewForbidden(schema.GroupResource{Resource: "secrets"}, "bitbucket-bot", errors.New("access denied"))
		})
		provider := NewKubernetesProvider(getConfigWithCredentials(), kubeClientset)

		// act
		_, err := provider.GetCredentials(context.Background(), "bitbucket-bot", "https://bb.example.com")

		assert.True(t, errors.Is(err, ErrCredentialsNotFound))
		assert.Contains(t, err.Error(), "forbidden")
	})

	t.Run("ReturnsErrCredentialsNotFoundIfHostnameAnnotationDoesNotMatch", func(t *testing.T) {

		kubeClientset := fake.NewSimpleClientset(&v1.Secret{
			ObjectMeta: metav1.ObjectMeta{
				Name:        "bitbucket-bot",
				Namespace:   "ci",
				Annotations: map[string]string{HostnameAnnotation: "bb.example.com"},
			},
			Data: map[string][]byte{
				"username": []byte("bot"),
				"password": []byte("s3cr3t"),
			},
		})
		provider := NewKubernetesProvider(getConfigWithCredentials(), kubeClientset)

		// act
		_, err := provider.GetCredentials(context.Background(), "bitbucket-bot", "https://other.example.com")

		assert.True(t, errors.Is(err, ErrCredentialsNotFound))
	})
}

func TestKeyringProviderGetCredentials(t *testing.T) {
	t.Run("ReturnsCredentialsFromKeyringItem", func(t *testing.T) {

		kr := keyring.NewArrayKeyring([]keyring.Item{
			{Key: "bitbucket-bot", Data: []byte(`{"username":"bot","secret":"s3cr3t"}`)},
		})
		provider := NewKeyringProvider(kr)

		// act
		credentials, err := provider.GetCredentials(context.Background(), "bitbucket-bot", "https://bb.example.com")

		assert.Nil(t, err)
		assert.Equal(t, api.Credentials{Username: "bot", Secret: "s3cr3t"}, credentials)
	})

	t.Run("ReturnsDefaultUsernameIfKeyringItemHasNone", func(t *testing.T) {

		kr := keyring.NewArrayKeyring([]keyring.Item{
			{Key: "bitbucket-token", Data: []byte(`{"secret":"token"}`)},
		})
		provider := NewKeyringProvider(kr)

		// act
		credentials, err := provider.GetCredentials(context.Background(), "bitbucket-token", "https://bb.example.com")

		assert.Nil(t, err)
		assert.Equal(t, DefaultSecretTextUsername, credentials.Username)
	})

	t.Run("ReturnsErrCredentialsNotFoundForMissingKey", func(t *testing.T) {

		kr := keyring.NewArrayKeyring([]keyring.Item{})
		provider := NewKeyringProvider(kr)

		// act
		_, err := provider.GetCredentials(context.Background(), "bitbucket-bot", "https://bb.example.com")

		assert.True(t, errors.Is(err, ErrCredentialsNotFound))
	})

	t.Run("ReturnsErrCredentialsNotFoundIfHostnameDoesNotMatch", func(t *testing.T) {

		kr := keyring.NewArrayKeyring([]keyring.Item{
			{Key: "bitbucket-bot", Data: []byte(`{"username":"bot","secret":"s3cr3t","hostname":"bb.example.com"}`)},
		})
		provider := NewKeyringProvider(kr)

		// act
		_, err := provider.GetCredentials(context.Background(), "bitbucket-bot", "https://other.example.com")

		assert.True(t, errors.Is(err, ErrCredentialsNotFound))
	})

	t.Run("ReturnsErrCredentialsNotFoundForInvalidJson", func(t *testing.T) {

		kr := keyring.NewArrayKeyring([]keyring.Item{
			{Key: "bitbucket-bot", Data: []byte(`s3cr3t`)},
		})
		provider := NewKeyringProvider(kr)

		// act
		_, err := provider.GetCredentials(context.Background(), "bitbucket-bot", "https://bb.example.com")

		assert.True(t, errors.Is(err, ErrCredentialsNotFound))
	})
}

func TestNewProvider(t *testing.T) {
	t.Run("ReturnsConfigProviderForConfigStore", func(t *testing.T) {

		config := getConfigWithCredentials()

		// act
		provider, err := NewProvider(config, nil, nil)

		assert.Nil(t, err)
		assert.IsType(t, &configProvider{}, provider)
	})

	t.Run("ReturnsKubernetesProviderForKubernetesStore", func(t *testing.T) {

		config := getConfigWithCredentials()
		config.Credentials.Store = api.CredentialsStoreKubernetes

		// act
		provider, err := NewProvider(config, fake.NewSimpleClientset(), nil)

		assert.Nil(t, err)
		assert.IsType(t, &kubernetesProvider{}, provider)
	})

	t.Run("ReturnsErrorForKubernetesStoreWithoutClient", func(t *testing.T) {

		config := getConfigWithCredentials()
		config.Credentials.Store = api.CredentialsStoreKubernetes

		// act
		_, err := NewProvider(config, nil, nil)

		assert.NotNil(t, err)
	})

	t.Run("ReturnsKeyringProviderForKeyringStore", func(t *testing.T) {

		config := getConfigWithCredentials()
		config.Credentials.Store = api.CredentialsStoreKeyring

		// act
		provider, err := NewProvider(config, nil, keyring.NewArrayKeyring(nil))

		assert.Nil(t, err)
		assert.IsType(t, &keyringProvider{}, provider)
	})
}

func TestDecorators(t *testing.T) {
	t.Run("PassThroughCredentialsAndErrors", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		innerProvider := NewMockProvider(ctrl)
		innerProvider.
			EXPECT().
			GetCredentials(gomock.Any(), "bitbucket-bot", "https://bb.example.com").
			Return(api.Credentials{Username: "bot", Secret: "s3cr3t"}, nil).
			Times(1)
		innerProvider.
			EXPECT().
			GetCredentials(gomock.Any(), "other-bot", "https://bb.example.com").
			Return(api.Credentials{}, ErrCredentialsNotFound).
			Times(1)

		provider := NewTracingProvider(NewMetricsProvider(NewLoggingProvider(innerProvider), discard.NewCounter(), discard.NewHistogram()))

		// act
		credentials, err := provider.GetCredentials(context.Background(), "bitbucket-bot", "https://bb.example.com")
		_, notFoundErr := provider.GetCredentials(context.Background(), "other-bot", "https://bb.example.com")

		assert.Nil(t, err)
		assert.Equal(t, "bot", credentials.Username)
		assert.True(t, errors.Is(notFoundErr, ErrCredentialsNotFound))
	})
}
