package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Config collects every external dependency's connection settings.
// Values come from an optional YAML file, with environment variables
// taking precedence. Secrets only ever come from the environment.
type Config struct {
	Port      string `yaml:"port"`
	MongoURI  string `yaml:"mongoUri"`
	DBName    string `yaml:"dbName"`
	RedisAddr string `yaml:"redisAddr"`

	AuthSecret string `yaml:"-"`

	SandboxBaseURL string `yaml:"sandboxBaseUrl"`
	SandboxAPIKey  string `yaml:"-"`

	EmbeddingBaseURL string `yaml:"embeddingBaseUrl"`
	EmbeddingAPIKey  string `yaml:"-"`

	CompletionAPIKey string `yaml:"-"`
	CompletionModel  string `yaml:"completionModel"`
}

// Load reads the optional config file named by CONFIG_FILE, then applies
// environment overrides and defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	overrideEnv(&cfg.Port, "PORT", "8080")
	overrideEnv(&cfg.MongoURI, "MONGO_URI", "")
	overrideEnv(&cfg.DBName, "DB_NAME", "joblink")
	overrideEnv(&cfg.RedisAddr, "REDIS_ADDR", "localhost:6379")
	overrideEnv(&cfg.AuthSecret, "AUTH_SECRET", "")
	overrideEnv(&cfg.SandboxBaseURL, "SANDBOX_BASE_URL", "https://api.paiza.io")
	overrideEnv(&cfg.SandboxAPIKey, "SANDBOX_API_KEY", "guest")
	overrideEnv(&cfg.EmbeddingBaseURL, "EMBEDDING_BASE_URL", "")
	overrideEnv(&cfg.EmbeddingAPIKey, "EMBEDDING_API_KEY", "")
	overrideEnv(&cfg.CompletionAPIKey, "COMPLETION_API_KEY", "")
	overrideEnv(&cfg.CompletionModel, "COMPLETION_MODEL", "gemini-2.0-flash")

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.MongoURI == "" {
		return errors.New("MONGO_URI is required")
	}
	if cfg.AuthSecret == "" {
		return errors.New("AUTH_SECRET is required")
	}
	return nil
}

func overrideEnv(field *string, key, fallback string) {
	if v := os.Getenv(key); v != "" {
		*field = v
		return
	}
	if *field == "" {
		*field = fallback
	}
}
