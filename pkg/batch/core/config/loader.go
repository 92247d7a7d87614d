package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

const moduleName = "config"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig
	EnvFilePath    string `name:"envFilePath" optional:"true"`
	// ConfigFilePath replaces the embedded YAML when set.
	ConfigFilePath string `name:"configFilePath" optional:"true"`
}

// LoadConfig builds a Config in four passes: defaults, the .env file,
// YAML (with ${VAR} placeholders expanded) and finally SURFIN_* style
// environment variables derived from the yaml tags.
func LoadConfig(envFilePath string, raw EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else if err := godotenv.Load(); err != nil {
		logger.Debugf(".env file not found or could not be loaded: %v", err)
	}

	cfg := NewConfig()
	expanded := []byte(os.ExpandEnv(string(raw)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to unmarshal configuration yaml", err, false, false)
	}
	if cfg.Surfin.AdaptorConfigs == nil {
		cfg.Surfin.AdaptorConfigs = map[string]interface{}{}
	}
	if cfg.Surfin.StorageConfigs == nil {
		cfg.Surfin.StorageConfigs = map[string]interface{}{}
	}
	if cfg.Application == nil {
		cfg.Application = map[string]interface{}{}
	}

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to load config from environment variables", err, false, false)
	}
	cfg.EmbeddedConfig = raw
	return cfg, nil
}

// LoadConfigFile reads YAML from path and delegates to LoadConfig.
func LoadConfigFile(envFilePath, path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, exception.NewBatchErrorf(moduleName, "failed to read configuration file %s", path, err)
	}
	return LoadConfig(envFilePath, raw)
}

// NewConfigProvider is an Fx provider that loads *Config and applies the
// logging settings it carries.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if params.ConfigFilePath != "" {
		cfg, err = LoadConfigFile(params.EnvFilePath, params.ConfigFilePath)
	} else {
		cfg, err = LoadConfig(params.EnvFilePath, params.EmbeddedConfig)
	}
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Surfin.System.Logging.Level)
	logger.SetFormat(cfg.Surfin.System.Logging.Format)
	logger.Debugf("Log level set to: %s", cfg.Surfin.System.Logging.Level)
	return cfg, nil
}

// loadStructFromEnv recursively overrides struct fields from environment variables.
// The variable name is the upper-cased chain of yaml tags joined by "_",
// e.g. SURFIN_SYSTEM_LOGGING_LEVEL.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}
		if field.Kind() == reflect.Map {
			loadMapFromEnv(field, envVarName+"_")
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// loadMapFromEnv overrides leaf values of map[string]interface{} sections that
// already exist in the YAML. SURFIN_DATABASE_METADATA_HOST updates
// surfin.database.metadata.host; keys that are not present are not created.
func loadMapFromEnv(mapField reflect.Value, prefix string) {
	m, ok := mapField.Interface().(map[string]interface{})
	if !ok || m == nil {
		return
	}
	overrideMap(m, prefix)
}

func overrideMap(m map[string]interface{}, prefix string) {
	for key, value := range m {
		name := strings.ToUpper(prefix + key)
		switch nested := value.(type) {
		case map[string]interface{}:
			overrideMap(nested, name+"_")
		default:
			if envValue, ok := os.LookupEnv(name); ok {
				m[key] = envValue
			}
		}
	}
}

// setField sets a scalar or string-slice field from its string form.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Float64, reflect.Float32:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return nil
		}
		parts := strings.Split(value, ",")
		out := reflect.MakeSlice(field.Type(), 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = reflect.Append(out, reflect.ValueOf(p))
			}
		}
		field.Set(out)
	}
	return nil
}
