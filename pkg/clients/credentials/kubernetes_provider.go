package credentials

import (
	"context"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// NewKubernetesProvider returns a credentials.Provider reading secrets named after the credentials reference
func NewKubernetesProvider(configGetter api.ConfigGetter, kubeClientset kubernetes.Interface) Provider {
	return &kubernetesProvider{
		configGetter:  configGetter,
		kubeClientset: kubeClientset,
	}
}

type kubernetesProvider struct {
	configGetter  api.ConfigGetter
	kubeClientset kubernetes.Interface
}

func (p *kubernetesProvider) GetCredentials(ctx context.Context, credentialsRef, targetURL string) (credentials api.Credentials, err error) {
	namespace := "default"
	if config := p.configGetter.GetConfig(); config != nil && config.Credentials != nil && config.Credentials.Namespace != "" {
		namespace = config.Credentials.Namespace
	}

	secret, err := p.kubeClientset.CoreV1().Secrets(namespace).Get(ctx, credentialsRef, metav1.GetOptions{})
	if err != nil {
		if k8serrors.IsNotFound(err) {
			return credentials, notFound(credentialsRef, "secret does not exist in namespace %v", namespace)
		}
		return credentials, notFound(credentialsRef, "failed retrieving secret from namespace %v: %v", namespace, err)
	}

	if !matchesHostname(secret.Annotations[HostnameAnnotation], targetURL) {
		return credentials, notFound(credentialsRef, "secret is not valid for %v", api.GetHostname(targetURL))
	}

	credentials.Username = string(secret.Data["username"])
	credentials.Secret = string(secret.Data["password"])
	if credentials.Secret == "" {
		credentials.Secret = string(secret.Data["secret"])
		if credentials.Username == "" {
			credentials.Username = DefaultSecretTextUsername
		}
	}

	if credentials.Secret == "" {
		return api.Credentials{}, notFound(credentialsRef, "secret has no password or secret key")
	}

	return credentials, nil
}
