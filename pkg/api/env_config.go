package api

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	envTag = "env"

	// EnvironmentVariablePrefix is the prefix for environment variables overriding config file values
	EnvironmentVariablePrefix = "ESBN"
)

var (
	ErrNotPtr          = errors.New("input must be a pointer")
	ErrNotStruct       = errors.New("input must be a struct")
	ErrUnsupportedKind = errors.New("field kind cannot be set from an environment variable")

	durationType = reflect.TypeOf(time.Duration(0))
)

// OverrideFromEnv sets config fields from environment variables named PREFIX_FIELD, PREFIX_NESTED_FIELD, etc; the env tag renames a field
func OverrideFromEnv(config interface{}, prefix string, environmentVariables []string) error {
	return OverrideFromEnvMap(config, prefix, transformEnvironmentVariablesToMap(environmentVariables))
}

func OverrideFromEnvMap(config interface{}, prefix string, environmentVariables map[string]string) error {
	prefix = strings.ToUpper(prefix)
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}

	environmentVariables = filterEnvironmentVariablesByPrefix(environmentVariables, prefix)
	if len(environmentVariables) == 0 {
		return nil
	}

	v := reflect.ValueOf(config)
	if v.Kind() != reflect.Ptr {
		return ErrNotPtr
	}

	e := v.Elem()
	if e.Kind() != reflect.Struct {
		return ErrNotStruct
	}

	t := e.Type()
	for i := 0; i < t.NumField(); i++ {
		ef := e.Field(i)
		tf := t.Field(i)

		if !ef.CanSet() {
			continue
		}

		name := strings.ToUpper(tf.Name)
		if tag := tf.Tag.Get(envTag); tag != "" {
			name = strings.ToUpper(tag)
		}
		fieldEnvvarName := prefix + name

		if val, ok := environmentVariables[fieldEnvvarName]; ok {
			log.Debug().Msgf("Envvar %v exists, overriding config value", fieldEnvvarName)
			if err := processField(val, ef); err != nil {
				return fmt.Errorf("%s(%q): %w", tf.Name, val, err)
			}
			continue
		}

		nestedPrefix := fieldEnvvarName + "_"
		if len(filterEnvironmentVariablesByPrefix(environmentVariables, nestedPrefix)) == 0 {
			continue
		}

		switch ef.Kind() {
		case reflect.Ptr:
			if ef.Type().Elem().Kind() != reflect.Struct {
				continue
			}
			if ef.IsNil() {
				ef.Set(reflect.New(ef.Type().Elem()))
			}
			if err := OverrideFromEnvMap(ef.Interface(), nestedPrefix, environmentVariables); err != nil {
				return err
			}
		case reflect.Struct:
			if err := OverrideFromEnvMap(ef.Addr().Interface(), nestedPrefix, environmentVariables); err != nil {
				return err
			}
		}
	}

	return nil
}

func transformEnvironmentVariablesToMap(environmentVariables []string) map[string]string {
	environmentVariablesMap := make(map[string]string, len(environmentVariables))

	for _, ev := range environmentVariables {
		key, value, _ := strings.Cut(ev, "=")
		environmentVariablesMap[key] = value
	}

	return environmentVariablesMap
}

func filterEnvironmentVariablesByPrefix(environmentVariables map[string]string, prefix string) map[string]string {
	filtered := make(map[string]string)

	for key, value := range environmentVariables {
		if strings.HasPrefix(key, prefix) {
			filtered[key] = value
		}
	}

	return filtered
}

func processField(v string, ef reflect.Value) error {
	for ef.Kind() == reflect.Ptr {
		if ef.IsNil() {
			ef.Set(reflect.New(ef.Type().Elem()))
		}
		ef = ef.Elem()
	}

	if v == "" {
		return nil
	}

	if ef.Type() == durationType {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		ef.SetInt(int64(d))
		return nil
	}

	switch ef.Kind() {
	case reflect.String:
		ef.SetString(v)
	case reflect.Bool:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		ef.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(v, 0, ef.Type().Bits())
		if err != nil {
			return err
		}
		ef.SetInt(i)
	case reflect.Slice:
		if ef.Type().Elem().Kind() != reflect.String {
			return ErrUnsupportedKind
		}
		vals := strings.Split(v, ",")
		s := reflect.MakeSlice(ef.Type(), len(vals), len(vals))
		for i, val := range vals {
			s.Index(i).SetString(strings.TrimSpace(val))
		}
		ef.Set(s)
	default:
		return ErrUnsupportedKind
	}

	return nil
}
