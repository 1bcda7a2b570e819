package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	General GeneralConfig `mapstructure:"general"`
	Server  ServerConfig  `mapstructure:"server"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Vector  VectorConfig  `mapstructure:"vector"`
	Scraper ScraperConfig `mapstructure:"scraper"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// OpenAIConfig contains the model provider settings
type OpenAIConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	CompletionModel string  `mapstructure:"completion_model"`
	EmbeddingModel  string  `mapstructure:"embedding_model"`
	Temperature     float64 `mapstructure:"temperature"`
	MaxTokens       int     `mapstructure:"max_tokens"`
}

func (o OpenAIConfig) Validate() error {
	if strings.TrimSpace(o.APIKey) == "" {
		return fmt.Errorf("openai.api_key is required (or set OPENAI_API_KEY)")
	}
	return nil
}

// VectorConfig selects and configures the vector store backend
type VectorConfig struct {
	Backend   string         `mapstructure:"backend"` // pinecone or pgvector
	Index     string         `mapstructure:"index"`
	Namespace string         `mapstructure:"namespace"`
	TopK      int            `mapstructure:"top_k"`
	Pinecone  PineconeConfig `mapstructure:"pinecone"`
	Postgres  PostgresConfig `mapstructure:"postgres"`
}

func (v VectorConfig) Validate() error {
	switch v.Backend {
	case "pinecone":
		return v.Pinecone.Validate()
	case "pgvector":
		return v.Postgres.Validate()
	}
	return fmt.Errorf("vector.backend must be pinecone or pgvector, got %q", v.Backend)
}

// PineconeConfig contains the Pinecone index connection settings
type PineconeConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Host    string        `mapstructure:"host"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func (p PineconeConfig) Validate() error {
	if strings.TrimSpace(p.APIKey) == "" {
		return fmt.Errorf("vector.pinecone.api_key is required (or set PINECONE_API_KEY)")
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("vector.pinecone.host is required (or set PINECONE_INDEX_HOST)")
	}
	return nil
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("vector.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.Port) == "" {
		return fmt.Errorf("vector.postgres.port required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("vector.postgres.dbname required when url is not provided")
	}
	return nil
}

// DSN renders a connection string from either the url or the discrete fields.
func (p PostgresConfig) DSN() string {
	if strings.TrimSpace(p.URL) != "" {
		return p.URL
	}
	sslmode := p.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, sslmode)
}

// ScraperConfig controls the headless-browser page scraper
type ScraperConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	UserAgent  string        `mapstructure:"user_agent"`
	MaxReviews int           `mapstructure:"max_reviews"`
}

func setDefaults() {
	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.default_timeout", 60*time.Second)
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("openai.completion_model", "gpt-4o-mini")
	viper.SetDefault("openai.embedding_model", "text-embedding-3-small")
	viper.SetDefault("openai.temperature", 0.7)
	viper.SetDefault("openai.max_tokens", 0)
	viper.SetDefault("vector.backend", "pinecone")
	viper.SetDefault("vector.index", "rag")
	viper.SetDefault("vector.namespace", "ns1")
	viper.SetDefault("vector.top_k", 3)
	viper.SetDefault("vector.pinecone.timeout", 30*time.Second)
	viper.SetDefault("vector.postgres.sslmode", "disable")
	viper.SetDefault("scraper.timeout", 30*time.Second)
	viper.SetDefault("scraper.max_reviews", 20)
}

// overrideFromEnv honours the conventional unprefixed variable names that the
// hosted providers document, on top of viper's PROFADVISOR_* mapping.
func overrideFromEnv(config *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		config.OpenAI.APIKey = v
	}
	if v := os.Getenv("PINECONE_API_KEY"); v != "" {
		config.Vector.Pinecone.APIKey = v
	}
	if v := os.Getenv("PINECONE_INDEX_HOST"); v != "" {
		config.Vector.Pinecone.Host = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Vector.Postgres.URL = v
	}
}

func validateConfig(config *Config) error {
	if err := config.OpenAI.Validate(); err != nil {
		return err
	}
	return config.Vector.Validate()
}

// LoadConfig loads config from file and environment. The file is optional;
// env-only deployments are supported.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	setDefaults()

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("PROFADVISOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	overrideFromEnv(&config)

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
