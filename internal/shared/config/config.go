package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreBackendFirestore = "firestore"
	StoreBackendPostgres  = "postgres"
)

type Config struct {
	Server    ServerConfig
	TLS       TLSConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Firebase  FirebaseConfig
	Listener  ListenerConfig
	Dispatch  DispatchConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

// StoreConfig selects the recipient store backend. UsersCollection only
// applies to the firestore backend.
type StoreConfig struct {
	Backend         string
	UsersCollection string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// ListenerConfig controls the Firestore on-create listener.
type ListenerConfig struct {
	Enabled                 bool
	NotificationsCollection string
}

// DispatchConfig overrides the static platform hints baked into every
// multicast payload.
type DispatchConfig struct {
	ChannelID   string
	ClickAction string
	DefaultTag  string
	Icon        string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
}

func Load() (*Config, error) {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	backend := getEnv("STORE_BACKEND", StoreBackendFirestore)
	if backend != StoreBackendFirestore && backend != StoreBackendPostgres {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: must be %q or %q",
			backend, StoreBackendFirestore, StoreBackendPostgres)
	}

	projectID := getEnv("FIREBASE_PROJECT_ID", "")
	if backend == StoreBackendFirestore && projectID == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required with the firestore store backend")
	}

	var allowedHosts []string
	for _, host := range strings.Split(getEnv("ALLOWED_HOSTS", ""), ",") {
		if host = strings.TrimSpace(host); host != "" {
			allowedHosts = append(allowedHosts, host)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Host:         getEnv("HOST", "0.0.0.0"),
			AllowedHosts: allowedHosts,
		},
		TLS: TLSConfig{
			Enabled:      getBoolEnv("TLS_ENABLED", false),
			CertPath:     getEnv("TLS_CERT_PATH", ""),
			KeyPath:      getEnv("TLS_KEY_PATH", ""),
			RedirectHTTP: getBoolEnv("TLS_REDIRECT_HTTP", false),
		},
		Store: StoreConfig{
			Backend:         backend,
			UsersCollection: getEnv("USERS_COLLECTION", "users"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "notifyd"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "notifyd"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Firebase: FirebaseConfig{
			ProjectID:       projectID,
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Listener: ListenerConfig{
			Enabled:                 getBoolEnv("LISTENER_ENABLED", false),
			NotificationsCollection: getEnv("NOTIFICATIONS_COLLECTION", "notifications"),
		},
		Dispatch: DispatchConfig{
			ChannelID:   getEnv("DISPATCH_CHANNEL_ID", "expenses_updates"),
			ClickAction: getEnv("DISPATCH_CLICK_ACTION", "FLUTTER_NOTIFICATION_CLICK"),
			DefaultTag:  getEnv("DISPATCH_DEFAULT_TAG", "default"),
			Icon:        getEnv("DISPATCH_ICON", "@mipmap/ic_launcher"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("TELEMETRY_ENABLED", false),
			ServiceName:  getEnv("TELEMETRY_SERVICE_NAME", "notifyd"),
			Environment:  getEnv("TELEMETRY_ENVIRONMENT", "development"),
			OTLPEndpoint: getEnv("TELEMETRY_OTLP_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("TELEMETRY_METRICS_PORT", "9090"),
		},
	}

	// Listener requires Firestore regardless of the recipient store backend;
	// it watches the notifications collection for created records.
	if cfg.Listener.Enabled && projectID == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required when LISTENER_ENABLED is true")
	}

	return cfg, nil
}

// ConnectionString builds a lib/pq connection string.
func (c DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
