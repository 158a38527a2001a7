package api

import (
	"errors"
	"fmt"
	"time"

	contracts "github.com/estafette/estafette-ci-contracts"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
)

var (
	ErrUnknownJob        = errors.New("job is not configured")
	ErrMissingBaseURL    = errors.New("set the base url (or set the global base url)")
	ErrMissingCommitHash = errors.New("commit hash is empty")
	ErrInvalidCommitHash = errors.New("commit hash is not a hexadecimal git object id")
)

const (
	// DefaultDescription is sent when a job has no description of its own
	DefaultDescription = "Build status reported by estafette-bitbucket-server-notifier"

	CredentialsStoreConfig     = "config"
	CredentialsStoreKubernetes = "kubernetes"
	CredentialsStoreKeyring    = "keyring"
)

var configValidator = validator.New()

// ConfigGetter hands out the current configuration snapshot
type ConfigGetter interface {
	GetConfig() *Config
}

// Config is the root of the notifier configuration file
type Config struct {
	Global      *GlobalConfig      `yaml:"global,omitempty"`
	Jobs        []*NotifierConfig  `yaml:"jobs,omitempty" validate:"dive,required"`
	Credentials *CredentialsConfig `yaml:"credentials,omitempty"`
	HTTP        *HTTPConfig        `yaml:"http,omitempty"`
	Server      *ServerConfig      `yaml:"server,omitempty"`
	Queue       *QueueConfig       `yaml:"queue,omitempty"`
}

// GetConfig makes a static config satisfy ConfigGetter
func (c *Config) GetConfig() *Config {
	return c
}

func (c *Config) SetDefaults() {
	if c.Global == nil {
		c.Global = &GlobalConfig{}
	}
	c.Global.SetDefaults()

	if c.Jobs == nil {
		c.Jobs = make([]*NotifierConfig, 0)
	}
	for _, j := range c.Jobs {
		if j != nil {
			j.SetDefaults()
		}
	}

	if c.Credentials == nil {
		c.Credentials = &CredentialsConfig{}
	}
	c.Credentials.SetDefaults()

	if c.HTTP == nil {
		c.HTTP = &HTTPConfig{}
	}
	c.HTTP.SetDefaults()

	if c.Server == nil {
		c.Server = &ServerConfig{}
	}

	if c.Queue == nil {
		c.Queue = &QueueConfig{}
	}
	c.Queue.SetDefaults()
}

func (c *Config) Validate() (err error) {
	err = configValidator.Struct(c)
	if err != nil {
		return err
	}

	names := map[string]bool{}
	for _, j := range c.Jobs {
		if names[j.Name] {
			return fmt.Errorf("Configuration item 'jobs' contains job %v more than once", j.Name)
		}
		names[j.Name] = true

		if j.BaseURL == "" && (c.Global == nil || c.Global.BaseURL == "") {
			return fmt.Errorf("Configuration item 'jobs[%v].baseUrl' is empty: %w", j.Name, ErrMissingBaseURL)
		}
	}

	if c.Credentials != nil {
		err = c.Credentials.Validate()
		if err != nil {
			return err
		}
	}

	if c.HTTP != nil {
		return c.HTTP.Validate()
	}

	return nil
}

// GetJob returns the job configuration by name
func (c *Config) GetJob(name string) (*NotifierConfig, error) {
	for _, j := range c.Jobs {
		if j.Name == name {
			return j, nil
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrUnknownJob, name)
}

// ResolveJob returns a copy of the job with the global base url applied when the job's own base url is empty
func (c *Config) ResolveJob(job NotifierConfig) (resolved NotifierConfig, err error) {
	err = copier.Copy(&resolved, &job)
	if err != nil {
		return resolved, err
	}

	resolved.BaseURL = NormalizeBaseURL(resolved.BaseURL)
	if resolved.BaseURL == "" && c.Global != nil {
		resolved.BaseURL = NormalizeBaseURL(c.Global.BaseURL)
	}
	if resolved.BaseURL == "" {
		return resolved, ErrMissingBaseURL
	}

	if resolved.Description == "" {
		resolved.Description = DefaultDescription
	}

	return resolved, nil
}

// GlobalConfig holds settings shared by all jobs
type GlobalConfig struct {
	BaseURL string `yaml:"baseUrl" env:"BASEURL" validate:"omitempty,url"`
}

func (c *GlobalConfig) SetDefaults() {
	c.BaseURL = NormalizeBaseURL(c.BaseURL)
}

// NotifierConfig controls when and where build statuses for a single job get sent
type NotifierConfig struct {
	Name            string `yaml:"name" validate:"required"`
	BaseURL         string `yaml:"baseUrl,omitempty" validate:"omitempty,url"`
	NotifyOnSuccess bool   `yaml:"notifyOnSuccess"`
	NotifyOnFailure bool   `yaml:"notifyOnFailure"`
	CredentialsRef  string `yaml:"credentialsRef" validate:"required"`
	Description     string `yaml:"description,omitempty"`
}

func (c *NotifierConfig) SetDefaults() {
	c.BaseURL = NormalizeBaseURL(c.BaseURL)
}

// ShouldNotify is true for a success with notifyOnSuccess or a failure with notifyOnFailure
func (c *NotifierConfig) ShouldNotify(result BuildResult) bool {
	return (result == BuildResultSuccess && c.NotifyOnSuccess) || (result == BuildResultFailure && c.NotifyOnFailure)
}

// CredentialsConfig selects the credentials store and holds the credentials for the config store
type CredentialsConfig struct {
	Store          string                        `yaml:"store"`
	Namespace      string                        `yaml:"namespace"`
	KeyringService string                        `yaml:"keyringService"`
	KeyringFileDir string                        `yaml:"keyringFileDir"`
	Items          []*contracts.CredentialConfig `yaml:"items,omitempty"`
}

func (c *CredentialsConfig) SetDefaults() {
	if c.Store == "" {
		c.Store = CredentialsStoreConfig
	}
	if c.Namespace == "" {
		c.Namespace = "default"
	}
	if c.KeyringService == "" {
		c.KeyringService = "estafette-bitbucket-server-notifier"
	}
	if c.KeyringFileDir == "" {
		c.KeyringFileDir = "~/.config/estafette-bitbucket-server-notifier/credentials"
	}
	if c.Items == nil {
		c.Items = make([]*contracts.CredentialConfig, 0)
	}
}

func (c *CredentialsConfig) Validate() (err error) {
	switch c.Store {
	case CredentialsStoreConfig, CredentialsStoreKubernetes, CredentialsStoreKeyring:
	default:
		return fmt.Errorf("Configuration item 'credentials.store' has unknown value %v; please set it to %v, %v or %v", c.Store, CredentialsStoreConfig, CredentialsStoreKubernetes, CredentialsStoreKeyring)
	}

	for _, i := range c.Items {
		if i == nil || i.Name == "" {
			return errors.New("Configuration item 'credentials.items[].name' is required; please set it to the reference used by jobs")
		}
	}

	return nil
}

// HTTPConfig configures the timeouts of the call to bitbucket server
type HTTPConfig struct {
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
}

func (c *HTTPConfig) SetDefaults() {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 30 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 60 * time.Second
	}
}

func (c *HTTPConfig) Validate() (err error) {
	if c.ConnectTimeout <= 0 {
		return errors.New("Configuration item 'http.connectTimeout' must be larger than zero")
	}
	if c.ReadTimeout <= 0 {
		return errors.New("Configuration item 'http.readTimeout' must be larger than zero")
	}

	return nil
}

// ServerConfig configures the http receiver
type ServerConfig struct {
	JWTKey string `yaml:"jwtKey"`
}

// QueueConfig configures the nats receiver and event publisher
type QueueConfig struct {
	Hosts                []string `yaml:"hosts"`
	SubjectBuilds        string   `yaml:"subjectBuilds"`
	SubjectNotifications string   `yaml:"subjectNotifications"`
}

func (c *QueueConfig) SetDefaults() {
	if c.SubjectBuilds == "" {
		c.SubjectBuilds = "bitbucket-server-notifier.builds"
	}
	if c.SubjectNotifications == "" {
		c.SubjectNotifications = "bitbucket-server-notifier.notifications"
	}
}

// Enabled is true when at least one queue host is configured
func (c *QueueConfig) Enabled() bool {
	return len(c.Hosts) > 0
}
