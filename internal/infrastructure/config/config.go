// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for watlas configuration.
	DefaultConfigDir = ".watlas"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultUniversesFile is the default universes file name.
	DefaultUniversesFile = "universes.yaml"
	// DefaultViewFile holds the persisted canon/universe selection.
	DefaultViewFile = "view.yaml"
	// DefaultSessionFile holds the CLI session token.
	DefaultSessionFile = "session.yaml"
	// DefaultDatabaseFile is the SQLite file name inside the config directory.
	DefaultDatabaseFile = "watlas.db"
	// DefaultImagesDir is the local image directory inside the config directory.
	DefaultImagesDir = "images"
	// DefaultCollection is the Qdrant collection used when none is configured.
	DefaultCollection = "watlas_pages"

	// MinJWTSecretLength is the shortest accepted signing secret.
	MinJWTSecretLength = 32
)

// Storage backends.
const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

var (
	// reNonAlphanumeric matches characters that aren't alphanumeric or underscore.
	reNonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	Server   ServerConfig   `yaml:"server,omitempty"`
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Storage  StorageConfig  `yaml:"storage,omitempty"`
	Embedder EmbedderConfig `yaml:"embedder,omitempty"`
	Qdrant   QdrantConfig   `yaml:"qdrant,omitempty"`
	Log      LogConfig      `yaml:"log,omitempty"`
}

// ServerConfig holds configuration for the HTTP API and session tokens.
type ServerConfig struct {
	Addr            string        `yaml:"addr,omitempty"`
	JWTSecret       string        `yaml:"jwt_secret,omitempty"`
	TokenTTL        time.Duration `yaml:"token_ttl,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
	Mode            string        `yaml:"mode,omitempty"` // gin mode: debug, release, test
}

// SQLiteConfig holds configuration for the SQLite relational database.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database.
	// Relative paths are resolved against the project directory.
	Path string `yaml:"path,omitempty"`
}

// StorageConfig holds configuration for page image storage.
type StorageConfig struct {
	Backend   string `yaml:"backend,omitempty"` // local or minio
	Dir       string `yaml:"dir,omitempty"`     // local backend directory
	PublicURL string `yaml:"public_url,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Bucket    string `yaml:"bucket,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	UseSSL    bool   `yaml:"use_ssl,omitempty"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// QdrantConfig holds configuration for the Qdrant vector database.
// Semantic search is off unless Enabled is set.
type QdrantConfig struct {
	Enabled    bool   `yaml:"enabled,omitempty"`
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // json or console
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			TokenTTL:        7 * 24 * time.Hour,
			ShutdownTimeout: 10 * time.Second,
			Mode:            "release",
		},
		Storage: StorageConfig{
			Backend: StorageLocal,
			Bucket:  "images",
		},
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: DefaultCollection,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from the .watlas directory in the given path.
// A .env file in basePath is read first so its values can feed the
// environment overrides.
func Load(basePath string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(basePath, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'watlas init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	cfg.applyEnvOverrides()
	cfg.resolvePaths(basePath)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides. WATLAS_*
// variables always win; provider keys only fill empty values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("WATLAS_JWT_SECRET"); v != "" {
		c.Server.JWTSecret = v
	}
	if v := os.Getenv("WATLAS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("WATLAS_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.Embedder.APIKey == "" {
		c.Embedder.APIKey = key
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" && c.Qdrant.APIKey == "" {
		c.Qdrant.APIKey = key
	}
	if key := os.Getenv("MINIO_ACCESS_KEY"); key != "" && c.Storage.AccessKey == "" {
		c.Storage.AccessKey = key
	}
	if key := os.Getenv("MINIO_SECRET_KEY"); key != "" && c.Storage.SecretKey == "" {
		c.Storage.SecretKey = key
	}
}

// resolvePaths fills and absolutizes file locations.
func (c *Config) resolvePaths(basePath string) {
	if c.SQLite.Path == "" {
		c.SQLite.Path = SQLitePath(basePath)
	} else if c.SQLite.Path != ":memory:" && !filepath.IsAbs(c.SQLite.Path) {
		c.SQLite.Path = filepath.Join(basePath, c.SQLite.Path)
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = ImagesDir(basePath)
	} else if !filepath.IsAbs(c.Storage.Dir) {
		c.Storage.Dir = filepath.Join(basePath, c.Storage.Dir)
	}
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	return validation.Errors{
		"server.jwt_secret": validation.Validate(c.Server.JWTSecret,
			validation.Required.Error("is required (set WATLAS_JWT_SECRET or run 'watlas init')"),
			validation.Length(MinJWTSecretLength, 0),
		),
		"server.token_ttl": validation.Validate(c.Server.TokenTTL, validation.Min(time.Minute)),
		"storage.backend":  validation.Validate(c.Storage.Backend, validation.In(StorageLocal, StorageMinio)),
		"storage.endpoint": validation.Validate(c.Storage.Endpoint,
			validation.When(c.Storage.Backend == StorageMinio, validation.Required),
		),
		"log.level": validation.Validate(strings.ToLower(c.Log.Level),
			validation.In("trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"),
		),
		"log.format": validation.Validate(c.Log.Format, validation.In("json", "console")),
	}.Filter()
}

// ConfigDir returns the path to the .watlas config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// UniversesFilePath returns the path to the universes file.
func UniversesFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultUniversesFile)
}

// ViewFilePath returns the path to the view state file.
func ViewFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultViewFile)
}

// SessionFilePath returns the path to the CLI session file.
func SessionFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultSessionFile)
}

// SQLitePath returns the default SQLite database path.
func SQLitePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultDatabaseFile)
}

// ImagesDir returns the default local image directory.
func ImagesDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultImagesDir)
}

// Exists checks if a watlas config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}

// SanitizeName converts a project name to a valid collection suffix.
func SanitizeName(name string) string {
	// Convert to lowercase
	name = strings.ToLower(name)

	// Replace spaces and hyphens with underscores
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")

	// Remove any characters that aren't alphanumeric or underscore
	name = reNonAlphanumeric.ReplaceAllString(name, "")

	// Remove consecutive underscores
	name = reMultipleUnderscores.ReplaceAllString(name, "_")

	// Trim leading/trailing underscores
	name = strings.Trim(name, "_")

	if name == "" {
		return "default"
	}

	return name
}

// GenerateCollectionName creates a collection name for a project.
func GenerateCollectionName(projectName string) string {
	return "watlas_" + SanitizeName(projectName)
}
