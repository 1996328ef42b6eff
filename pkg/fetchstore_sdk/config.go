package fetchstore_sdk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetch"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "FETCHSTORE"

const (
	KeyRuntimeMode = "runtime_mode"
	KeyAPIURL      = "api_url"
	KeyTimeout     = "timeout"
	KeyLogLevel    = "log_level"
	KeyMACKey      = "mac_key"
	KeyMockSeed    = "mock_seed"
	KeyMetrics     = "metrics"
)

const (
	ModeAuto = "auto"
	ModeHTTP = "http"
	ModeMock = "mock"
)

// ErrUnsupportedMode is returned for a runtime mode other than auto, http or mock.
var ErrUnsupportedMode = errors.New("fetchstore_sdk: unsupported runtime mode")

// Config is the resolved bootstrap configuration.
type Config struct {
	RuntimeMode string        `mapstructure:"runtime_mode"`
	APIURL      string        `mapstructure:"api_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	LogLevel    string        `mapstructure:"log_level"`
	// MACKey is the hex encoded HMAC secret. Empty disables signing.
	MACKey   string `mapstructure:"mac_key"`
	MockSeed string `mapstructure:"mock_seed"`
	Metrics  bool   `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyRuntimeMode, ModeAuto)
	v.SetDefault(KeyAPIURL, "")
	v.SetDefault(KeyTimeout, fetch.DefaultTimeout)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyMACKey, "")
	v.SetDefault(KeyMockSeed, "")
	v.SetDefault(KeyMetrics, false)
}

// LoadConfig resolves the configuration. configFile may be empty; missing
// dotenv files are skipped. Process environment wins over dotenv values,
// which win over the config file.
func LoadConfig(configFile string, dotenvFiles ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("fetchstore_sdk: read config %s: %w", configFile, err)
		}
	}

	for _, path := range dotenvFiles {
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("fetchstore_sdk: read %s: %w", path, err)
		}
		applyDotenv(v, values)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("fetchstore_sdk: decode config: %w", err)
	}
	cfg.RuntimeMode = strings.ToLower(strings.TrimSpace(cfg.RuntimeMode))
	cfg.APIURL = strings.TrimSpace(cfg.APIURL)
	return cfg, nil
}

// applyDotenv overrides the config file with FETCHSTORE_* entries from a
// dotenv file unless the variable is set in the process environment.
func applyDotenv(v *viper.Viper, values map[string]string) {
	prefix := EnvPrefix + "_"
	for name, value := range values {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if _, set := os.LookupEnv(name); set {
			continue
		}
		v.Set(strings.ToLower(strings.TrimPrefix(name, prefix)), value)
	}
}

// ResolveMode applies the auto rule and validates the mode.
func (c Config) ResolveMode() (string, error) {
	switch c.RuntimeMode {
	case ModeAuto, "":
		if c.APIURL != "" {
			return ModeHTTP, nil
		}
		return ModeMock, nil
	case ModeHTTP:
		if c.APIURL == "" {
			return "", fmt.Errorf("fetchstore_sdk: http mode requires %s_%s", EnvPrefix, strings.ToUpper(KeyAPIURL))
		}
		return ModeHTTP, nil
	case ModeMock:
		return ModeMock, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedMode, c.RuntimeMode)
	}
}
