package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Server    ServerConfig            `mapstructure:"server"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Cache     CacheConfig             `mapstructure:"cache"`
	Providers ProvidersConfig         `mapstructure:"providers"`
	Analysis  AnalysisConfig          `mapstructure:"analysis"`
	Pricing   PricingConfig           `mapstructure:"pricing"`
	Tracing   TracingConfig           `mapstructure:"tracing"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Logging   LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig selects the persistent tier backing the analysis cache.
// Store is one of "memory", "redis" or "postgres".
type CacheConfig struct {
	Store         string `mapstructure:"store"`
	Namespace     string `mapstructure:"namespace"`
	MemoryMaxSize int    `mapstructure:"memory_max_size"`
	StoreMaxSize  int    `mapstructure:"store_max_size"`
	DefaultTTL    int    `mapstructure:"default_ttl"` // milliseconds
}

// --- Providers ---

type ProvidersConfig struct {
	Government   GovernmentConfig   `mapstructure:"government"`
	Compensation CompensationConfig `mapstructure:"compensation"`
	LLM          LLMConfig          `mapstructure:"llm"`
}

// HTTPProviderConfig is shared by every remote provider.
type HTTPProviderConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	BaseURL    string  `mapstructure:"base_url"`
	APIKey     string  `mapstructure:"api_key"`
	Timeout    int     `mapstructure:"timeout"` // milliseconds
	MaxRetries int     `mapstructure:"max_retries"`
	RateLimit  float64 `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
}

type GovernmentConfig struct {
	HTTPProviderConfig `mapstructure:",squash"`
	DataYear           int `mapstructure:"data_year"`
}

type CompensationConfig struct {
	HTTPProviderConfig `mapstructure:",squash"`
}

type LLMConfig struct {
	HTTPProviderConfig `mapstructure:",squash"`
	Model              string  `mapstructure:"model"`
	Temperature        float64 `mapstructure:"temperature"`
	MaxTokens          int     `mapstructure:"max_tokens"`
}

// AnalysisConfig holds the tier thresholds and request defaults.
type AnalysisConfig struct {
	CommercialMinConfidence float64 `mapstructure:"commercial_min_confidence"`
	EstimateMinConfidence   float64 `mapstructure:"estimate_min_confidence"`
	ConfidenceThreshold     float64 `mapstructure:"confidence_threshold"`
	DefaultModel            string  `mapstructure:"default_model"`
	EngineVersion           string  `mapstructure:"engine_version"`
	Timeout                 int     `mapstructure:"timeout"` // milliseconds
}

type PricingConfig struct {
	RegistryPath string `mapstructure:"registry_path"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
