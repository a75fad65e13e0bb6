package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigYAML is the default configuration content. The first verb
// receives the generated JWT secret, the second the Qdrant collection name.
const DefaultConfigYAML = `# Watlas Configuration

server:
  addr: ":8080"
  jwt_secret: %q
  token_ttl: 168h
  shutdown_timeout: 10s
  mode: release

sqlite:
  # path: .watlas/watlas.db

storage:
  backend: local
  # dir: .watlas/images
  # public_url: http://localhost:8080/images
  # MinIO / S3-compatible storage:
  # backend: minio
  # endpoint: localhost:9000
  # bucket: images
  # access_key: (or set MINIO_ACCESS_KEY env var)
  # secret_key: (or set MINIO_SECRET_KEY env var)
  # use_ssl: false

embedder:
  provider: openai
  model: text-embedding-3-small
  # api_key: your-api-key (or set OPENAI_API_KEY env var)

qdrant:
  enabled: false
  host: localhost
  port: 6334
  collection: %s
  # api_key: your-api-key (for Qdrant Cloud)

log:
  level: info
  format: console
`

// WriteDefault creates the .watlas directory and writes a default config file
// with a freshly generated signing secret.
func WriteDefault(basePath, projectName string) error {
	configDir := filepath.Join(basePath, DefaultConfigDir)
	configFile := filepath.Join(configDir, DefaultConfigFile)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	secret, err := GenerateSecret()
	if err != nil {
		return err
	}

	content := fmt.Sprintf(DefaultConfigYAML, secret, GenerateCollectionName(projectName))
	if err := os.WriteFile(configFile, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Write writes the given config to the config file.
func Write(basePath string, cfg *Config) error {
	configDir := filepath.Join(basePath, DefaultConfigDir)
	configFile := filepath.Join(configDir, DefaultConfigFile)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// GenerateSecret returns a random hex-encoded 32-byte secret.
func GenerateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
