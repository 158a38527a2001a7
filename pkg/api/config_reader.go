package api

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	crypt "github.com/estafette/estafette-ci-crypt"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	yaml "gopkg.in/yaml.v2"
)

// ConfigReader reads the notifier config from file
type ConfigReader interface {
	ReadConfigFromFile(configPath string, decryptSecrets bool) (*Config, error)
}

type configReaderImpl struct {
	secretHelper         crypt.SecretHelper
	environmentVariables func() []string
}

// NewConfigReader returns a new api.ConfigReader
func NewConfigReader(secretHelper crypt.SecretHelper) ConfigReader {
	return &configReaderImpl{
		secretHelper:         secretHelper,
		environmentVariables: os.Environ,
	}
}

// ReadConfigFromFile is used to read configuration from a file, mounted from a configmap or placed next to the ci agent
func (h *configReaderImpl) ReadConfigFromFile(configPath string, decryptSecrets bool) (config *Config, err error) {

	log.Info().Msgf("Reading %v file...", configPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed reading config file %v", configPath)
	}

	// decrypt secrets before unmarshalling
	if decryptSecrets && h.secretHelper != nil {
		decryptedData, err := h.secretHelper.DecryptAllEnvelopes(string(data), "")
		if err != nil {
			return nil, errors.Wrapf(err, "Failed decrypting secrets in config file %v", configPath)
		}

		data = []byte(decryptedData)
	}

	config = &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "Failed unmarshalling config file %v", configPath)
	}

	// override values from envvars
	if err = OverrideFromEnv(config, EnvironmentVariablePrefix, h.environmentVariables()); err != nil {
		return nil, errors.Wrap(err, "Failed overriding config from environment variables")
	}

	// fill in all the defaults for empty values
	config.SetDefaults()

	err = config.Validate()
	if err != nil {
		return nil, errors.Wrapf(err, "Config file %v is invalid", configPath)
	}

	log.Info().Msgf("Finished reading %v file successfully", configPath)

	return config, nil
}

// NewConfigWatcher returns a ConfigGetter that re-reads the config file whenever it changes
func NewConfigWatcher(configReader ConfigReader, configPath string, decryptSecrets bool, initialConfig *Config) *ConfigWatcher {
	return &ConfigWatcher{
		configReader:   configReader,
		configPath:     configPath,
		decryptSecrets: decryptSecrets,
		config:         initialConfig,
	}
}

type ConfigWatcher struct {
	configReader   ConfigReader
	configPath     string
	decryptSecrets bool

	mu     sync.RWMutex
	config *Config
}

func (w *ConfigWatcher) GetConfig() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.config
}

// Reload reads the config file and swaps it in; an invalid file keeps the previous config
func (w *ConfigWatcher) Reload() error {
	config, err := w.configReader.ReadConfigFromFile(w.configPath, w.decryptSecrets)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.config = config
	w.mu.Unlock()

	return nil
}

// Watch blocks until the context is cancelled, reloading the config on every change; the directory is watched since configmap mounts replace the file through a symlink swap
func (w *ConfigWatcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "Failed creating config file watcher")
	}
	defer watcher.Close()

	configDir := filepath.Dir(w.configPath)
	if err := watcher.Add(configDir); err != nil {
		return errors.Wrapf(err, "Failed watching config directory %v", configDir)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			log.Debug().Str("event", event.String()).Msg("Config directory changed, reloading config")
			if err := w.Reload(); err != nil {
				log.Warn().Err(err).Msgf("Reloading %v failed, keeping previous config", w.configPath)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Config file watcher returned an error")
		}
	}
}
