package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Vendor environments and their API base URLs.
const (
	PlaidEnvSandbox    = "sandbox"
	PlaidEnvProduction = "production"
)

var plaidBaseURLs = map[string]string{
	PlaidEnvSandbox:    "https://sandbox.plaid.com",
	PlaidEnvProduction: "https://production.plaid.com",
}

type Config struct {
	Server     ServerConfig
	Plaid      PlaidConfig
	TLS        TLSConfig
	Store      StoreConfig
	Database   DatabaseConfig
	Encryption EncryptionConfig
	Telemetry  TelemetryConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

type PlaidConfig struct {
	ClientID   string
	Secret     string
	TemplateID string
	Env        string
	BaseURL    string
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

// StoreConfig toggles persistence of linked items and manual applicants.
// When disabled linked items are not kept and applicants live in process
// memory.
type StoreConfig struct {
	Enabled bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type EncryptionConfig struct {
	Key string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
}

// MissingEnvError lists every required variable that was not set.
type MissingEnvError struct {
	Keys []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Keys, ", "))
}

var requiredKeys = []string{"PLAID_CLIENT_ID", "PLAID_SECRET", "LAYER_TEMPLATE_ID"}

func Load() (*Config, error) {
	var missing []string
	for _, key := range requiredKeys {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingEnvError{Keys: missing}
	}

	storeCfg, err := LoadStore()
	if err != nil {
		return nil, err
	}

	appPort := getEnv("APP_PORT", "3001")
	if p, err := strconv.Atoi(appPort); err != nil || p <= 0 || p > 65535 {
		return nil, fmt.Errorf("invalid APP_PORT: %q", appPort)
	}

	plaidEnv := strings.ToLower(getEnv("PLAID_ENV", PlaidEnvSandbox))
	baseURL, ok := plaidBaseURLs[plaidEnv]
	if !ok {
		return nil, fmt.Errorf("invalid PLAID_ENV %q: expected %s or %s", plaidEnv, PlaidEnvSandbox, PlaidEnvProduction)
	}
	if override := getEnv("PLAID_BASE_URL", ""); override != "" {
		baseURL = strings.TrimRight(override, "/")
	}

	// Parse allowed hosts (comma-separated list)
	allowedHostsStr := getEnv("ALLOWED_HOSTS", "")
	var allowedHosts []string
	if allowedHostsStr != "" {
		for _, host := range strings.Split(allowedHostsStr, ",") {
			host = strings.TrimSpace(host)
			if host != "" {
				allowedHosts = append(allowedHosts, host)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         appPort,
			Host:         getEnv("HOST", "0.0.0.0"),
			AllowedHosts: allowedHosts,
		},
		Plaid: PlaidConfig{
			ClientID:   os.Getenv("PLAID_CLIENT_ID"),
			Secret:     os.Getenv("PLAID_SECRET"),
			TemplateID: os.Getenv("LAYER_TEMPLATE_ID"),
			Env:        plaidEnv,
			BaseURL:    baseURL,
		},
		TLS: TLSConfig{
			Enabled:      getBoolEnv("TLS_ENABLED", false),
			CertPath:     getEnv("TLS_CERT_PATH", ""),
			KeyPath:      getEnv("TLS_KEY_PATH", ""),
			RedirectHTTP: getBoolEnv("TLS_REDIRECT_HTTP", false),
		},
		Store:      storeCfg.Store,
		Database:   storeCfg.Database,
		Encryption: storeCfg.Encryption,
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "layer-relay"),
			Environment:  plaidEnv,
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9464"),
		},
	}

	// Validate TLS configuration
	if cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" {
			return nil, fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if cfg.TLS.KeyPath == "" {
			return nil, fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}

	return cfg, nil
}

// LoadStore reads only the store, database and encryption settings. It does
// not require the vendor credentials, so offline tools can reach the store.
func LoadStore() (*Config, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	cfg := &Config{
		Store: StoreConfig{
			Enabled: getBoolEnv("STORE_ENABLED", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "layer"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "layer-demo"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Encryption: EncryptionConfig{
			Key: getEnv("ENCRYPTION_KEY", ""),
		},
	}

	// The encryption key only matters when access tokens are persisted
	if cfg.Store.Enabled {
		if cfg.Encryption.Key == "" {
			return nil, fmt.Errorf("ENCRYPTION_KEY is required when STORE_ENABLED=true")
		}
		if len(cfg.Encryption.Key) != 32 {
			return nil, fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
		}
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
