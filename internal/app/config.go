package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/tgedr/connectors/pkg/sftpx"
)

// ConfigFileEnv names the environment variable holding the config file path.
const ConfigFileEnv = "CONNECTORS_CONFIG"

type Config struct {
	Env         string   `toml:"env"`          // Environment (dev, staging, prod) (default: dev)
	LogLevel    string   `toml:"log_level"`    // Log level (debug, info, warn, error) (default: info)
	LogFormat   string   `toml:"log_format"`   // Log format (json, text) (default: json)
	HTTPTimeout Duration `toml:"http_timeout"` // Outbound HTTP timeout (default: 30s)
	Pushgateway string   `toml:"pushgateway"`  // Optional: Prometheus Pushgateway URL

	AzureAD  AzureADConfig  `toml:"azuread"`
	Table    TableConfig    `toml:"table"`
	SFTP     SFTPConfig     `toml:"sftp"`
	Monetate MonetateConfig `toml:"monetate"`
}

type AzureADConfig struct {
	Tenant       string `toml:"tenant"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	Resource     string `toml:"resource"`
	AuthorityURL string `toml:"authority_url"` // Optional: defaults to the public cloud
}

type TableConfig struct {
	Account string `toml:"account"`
	Key     string `toml:"key"` // Base64 shared key
	Table   string `toml:"table"`
	BaseURL string `toml:"base_url"` // Optional: e.g. an Azurite endpoint
}

type SFTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"` // default: 22
	Username string `toml:"username"`
	Password string `toml:"password"`

	DialTimeout Duration `toml:"dial_timeout"` // SSH connect timeout (default: 30s)
}

type MonetateConfig struct {
	Username       string `toml:"username"`
	PrivateKey     string `toml:"private_key"`      // PEM, takes precedence over PrivateKeyFile
	PrivateKeyFile string `toml:"private_key_file"` // Path to a PEM file
	Account        string `toml:"account"`          // default: pandorademo
	Environment    string `toml:"environment"`      // default: production
	TokenURL       string `toml:"token_url"`        // Optional override
	DataURL        string `toml:"data_url"`         // Optional override, wins over account/environment
}

// Duration is a time.Duration written as "30s" in config files.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := parseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// LoadConfig builds the configuration from defaults, then the TOML file at
// path (or $CONNECTORS_CONFIG when path is empty), then the environment.
// A missing file is only an error when one was asked for.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		Env:         "dev",
		LogLevel:    "info",
		LogFormat:   "json",
		HTTPTimeout: Duration(30 * time.Second),
		SFTP:        SFTPConfig{Port: 22, DialTimeout: Duration(sftpx.DefaultDialTimeout)},
	}

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.HTTPTimeout = Duration(getEnvDurationOrDefault("HTTP_TIMEOUT", time.Duration(cfg.HTTPTimeout)))
	cfg.Pushgateway = getEnvOrDefault("CONNECTORS_PUSHGATEWAY", cfg.Pushgateway)

	cfg.AzureAD.Tenant = getEnvOrDefault("AZURE_TENANT_ID", cfg.AzureAD.Tenant)
	cfg.AzureAD.ClientID = getEnvOrDefault("AZURE_CLIENT_ID", cfg.AzureAD.ClientID)
	cfg.AzureAD.ClientSecret = getEnvOrDefault("AZURE_CLIENT_SECRET", cfg.AzureAD.ClientSecret)
	cfg.AzureAD.Resource = getEnvOrDefault("AZURE_RESOURCE", cfg.AzureAD.Resource)

	cfg.Table.Account = getEnvOrDefault("AZURE_STORAGE_ACCOUNT", cfg.Table.Account)
	cfg.Table.Key = getEnvOrDefault("AZURE_STORAGE_ACCESS_KEY", cfg.Table.Key)
	cfg.Table.Table = getEnvOrDefault("AZURE_STORAGE_TABLE", cfg.Table.Table)

	cfg.SFTP.Host = getEnvOrDefault("SFTP_HOST", cfg.SFTP.Host)
	cfg.SFTP.Port = getEnvIntOrDefault("SFTP_PORT", cfg.SFTP.Port)
	cfg.SFTP.Username = getEnvOrDefault("SFTP_USERNAME", cfg.SFTP.Username)
	cfg.SFTP.Password = getEnvOrDefault("SFTP_PASSWORD", cfg.SFTP.Password)
	cfg.SFTP.DialTimeout = Duration(getEnvDurationOrDefault("SFTP_DIAL_TIMEOUT", time.Duration(cfg.SFTP.DialTimeout)))

	cfg.Monetate.Username = getEnvOrDefault("MONETATE_USERNAME", cfg.Monetate.Username)
	cfg.Monetate.PrivateKey = getEnvOrDefault("MONETATE_KEY", cfg.Monetate.PrivateKey)
	cfg.Monetate.PrivateKeyFile = getEnvOrDefault("MONETATE_KEY_FILE", cfg.Monetate.PrivateKeyFile)
	cfg.Monetate.Account = getEnvOrDefault("MONETATE_ACCOUNT", cfg.Monetate.Account)
	cfg.Monetate.Environment = getEnvOrDefault("MONETATE_ENV", cfg.Monetate.Environment)

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := parseDuration(value); err == nil {
		return d
	}
	return defaultValue
}

// parseDuration accepts Go durations ("1m30s") and bare integers as seconds.
func parseDuration(value string) (time.Duration, error) {
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return time.Duration(secs) * time.Second, nil
}
