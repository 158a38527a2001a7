package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverrideFromEnv(t *testing.T) {
	t.Run("DoesNotOverrideConfigIfNoEnvironmentVariablesStartWithPrefix", func(t *testing.T) {

		config := Config{Global: &GlobalConfig{BaseURL: "https://bb.example.com"}}

		// act
		err := OverrideFromEnv(&config, EnvironmentVariablePrefix, []string{"GLOBAL_BASEURL=https://other.example.com"})

		assert.Nil(t, err)
		assert.Equal(t, "https://bb.example.com", config.Global.BaseURL)
	})

	t.Run("OverridesNestedPointerFieldUsingEnvTag", func(t *testing.T) {

		config := Config{Global: &GlobalConfig{BaseURL: "https://bb.example.com"}}

		// act
		err := OverrideFromEnv(&config, EnvironmentVariablePrefix, []string{"ESBN_GLOBAL_BASEURL=https://other.example.com/"})

		assert.Nil(t, err)
		assert.Equal(t, "https://other.example.com/", config.Global.BaseURL)
	})

	t.Run("InitializesNilNestedPointerStruct", func(t *testing.T) {

		config := Config{}

		// act
		err := OverrideFromEnv(&config, EnvironmentVariablePrefix, []string{"ESBN_CREDENTIALS_STORE=kubernetes", "ESBN_CREDENTIALS_NAMESPACE=ci"})

		assert.Nil(t, err)
		if assert.NotNil(t, config.Credentials) {
			assert.Equal(t, "kubernetes", config.Credentials.Store)
			assert.Equal(t, "ci", config.Credentials.Namespace)
		}
	})

	t.Run("KeepsNilNestedPointerIfNoEnvironmentVariableHasItsPrefix", func(t *testing.T) {

		config := Config{}

		// act
		err := OverrideFromEnv(&config, EnvironmentVariablePrefix, []string{"ESBN_SERVER_JWTKEY=abc"})

		assert.Nil(t, err)
		assert.Nil(t, config.Credentials)
		assert.Equal(t, "abc", config.Server.JWTKey)
	})

	t.Run("OverridesDurationField", func(t *testing.T) {

		config := Config{HTTP: &HTTPConfig{ConnectTimeout: 30 * time.Second}}

		// act
		err := OverrideFromEnv(&config, EnvironmentVariablePrefix, []string{"ESBN_HTTP_CONNECTTIMEOUT=5s"})

		assert.Nil(t, err)
		assert.Equal(t, 5*time.Second, config.HTTP.ConnectTimeout)
	})

	t.Run("OverridesStringSliceFieldFromCommaSeparatedValue", func(t *testing.T) {

		config := Config{}

		// act
		err := OverrideFromEnv(&config, EnvironmentVariablePrefix, []string{"ESBN_QUEUE_HOSTS=nats-0:4222, nats-1:4222"})

		assert.Nil(t, err)
		assert.Equal(t, []string{"nats-0:4222", "nats-1:4222"}, config.Queue.Hosts)
	})

	t.Run("OverridesBoolField", func(t *testing.T) {

		var config struct {
			NotifyOnSuccess bool
		}

		// act
		err := OverrideFromEnv(&config, "prefix", []string{"PREFIX_NOTIFYONSUCCESS=true"})

		assert.Nil(t, err)
		assert.True(t, config.NotifyOnSuccess)
	})

	t.Run("KeepsEqualsSignsInValue", func(t *testing.T) {

		var config struct {
			Key string
		}

		// act
		err := OverrideFromEnv(&config, "prefix", []string{"PREFIX_KEY=a=b=c"})

		assert.Nil(t, err)
		assert.Equal(t, "a=b=c", config.Key)
	})

	t.Run("ReturnsErrorForInvalidBool", func(t *testing.T) {

		var config struct {
			NotifyOnSuccess bool
		}

		// act
		err := OverrideFromEnv(&config, "prefix", []string{"PREFIX_NOTIFYONSUCCESS=maybe"})

		assert.NotNil(t, err)
	})

	t.Run("ReturnsErrNotPtrForNonPointer", func(t *testing.T) {

		var config struct {
			Key string
		}

		// act
		err := OverrideFromEnv(config, "prefix", []string{"PREFIX_KEY=value"})

		assert.ErrorIs(t, err, ErrNotPtr)
	})
}
