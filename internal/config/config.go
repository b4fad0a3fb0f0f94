package config

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// API Key Precedence Order:
// 1. Credentials source (file watch or Vault) when configured
// 2. Config File values
// 3. Environment Variables (ATSMATCH_AI_APIKEY, GEMINI_API_KEY)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Keywords      KeywordsConfig      `mapstructure:"keywords"`
	Scoring       ScoringConfig       `mapstructure:"scoring"`
	Extraction    ExtractionConfig    `mapstructure:"extraction"`
	Rules         RulesConfig         `mapstructure:"rules"`
	Credentials   CredentialsConfig   `mapstructure:"credentials"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds language model configuration
type AIConfig struct {
	Provider         string          `mapstructure:"provider"`
	Model            string          `mapstructure:"model"`
	Timeout          time.Duration   `mapstructure:"timeout"`
	APIKey           string          `mapstructure:"apiKey"`
	Temperature      float32         `mapstructure:"temperature"`
	MaxOutputTokens  int32           `mapstructure:"maxOutputTokens"`
	UseSystemPrompts bool            `mapstructure:"useSystemPrompts"`
	RateLimit        RateLimitConfig `mapstructure:"rateLimit"`

	// Operation-specific configurations
	Categorize  OperationAIConfig `mapstructure:"categorize"`
	ExtractText OperationAIConfig `mapstructure:"extractText"`
	Structure   OperationAIConfig `mapstructure:"structure"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds AI configuration for a single model operation.
// Nil pointers fall back to the global AIConfig value.
type OperationAIConfig struct {
	Provider         string               `mapstructure:"provider"`
	Model            string               `mapstructure:"model"`
	Timeout          *time.Duration       `mapstructure:"timeout"`
	APIKey           string               `mapstructure:"apiKey"`
	Temperature      *float32             `mapstructure:"temperature"`
	MaxOutputTokens  *int32               `mapstructure:"maxOutputTokens"`
	UseSystemPrompts *bool                `mapstructure:"useSystemPrompts"`
	Prompts          PromptConfig         `mapstructure:"prompts"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// PromptConfig holds prompt overrides for one operation. File paths take
// precedence over inline text.
type PromptConfig struct {
	System     string `mapstructure:"system"`
	SystemFile string `mapstructure:"systemFile"`
	User       string `mapstructure:"user"`
	UserFile   string `mapstructure:"userFile"`
}

// RateLimitConfig throttles outbound model requests for the whole process
type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	RequestsPerMin int  `mapstructure:"requestsPerMin"`
	BurstCapacity  int  `mapstructure:"burstCapacity"`
}

// KeywordsConfig holds job keyword categorization tuning
type KeywordsConfig struct {
	MaxDescriptionLength  int `mapstructure:"maxDescriptionLength"`
	MinDescriptionLength  int `mapstructure:"minDescriptionLength"`
	ShortDescriptionLimit int `mapstructure:"shortDescriptionLimit"`
	BasicExtractionLimit  int `mapstructure:"basicExtractionLimit"`
	MaxItemsPerCategory   int `mapstructure:"maxItemsPerCategory"`
	QualityGateMinItems   int `mapstructure:"qualityGateMinItems"`
	MinKeywordLength      int `mapstructure:"minKeywordLength"`
	MaxKeywordLength      int `mapstructure:"maxKeywordLength"`
}

// ScoringConfig holds rubric tuning
type ScoringConfig struct {
	MeaningfulSummaryLength int `mapstructure:"meaningfulSummaryLength"`
	MissingKeywordsInTip    int `mapstructure:"missingKeywordsInTip"`
}

// ExtractionConfig holds resume extraction settings
type ExtractionConfig struct {
	MaxInputChars     int          `mapstructure:"maxInputChars"`
	Attempts          int          `mapstructure:"attempts"`
	Strategies        []string     `mapstructure:"strategies"`
	SinglePassPrompts PromptConfig `mapstructure:"singlePassPrompts"`
}

// RulesConfig points at an optional rule table override file
type RulesConfig struct {
	OverrideFile string `mapstructure:"overrideFile"`
}

// CredentialsConfig selects where the model API key comes from and how
// it is refreshed
type CredentialsConfig struct {
	Source        string        `mapstructure:"source"`        // static, file, vault
	Refresh       string        `mapstructure:"refresh"`       // none, watch, poll
	KeyFile       string        `mapstructure:"keyFile"`       // used by the file source
	PollInterval  time.Duration `mapstructure:"pollInterval"`  // used by the vault source
	DebounceDelay time.Duration `mapstructure:"debounceDelay"` // used by the file source
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig holds fine-grained custom metrics configuration
type CustomMetricsConfig struct {
	AIOperations    AIOperationsMetricsConfig `mapstructure:"aiOperations"`
	BusinessMetrics BusinessMetricsConfig     `mapstructure:"businessMetrics"`
}

// AIOperationsMetricsConfig holds AI operation metrics configuration
type AIOperationsMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackDuration   bool `mapstructure:"trackDuration"`
	TrackTokenUsage bool `mapstructure:"trackTokenUsage"`
}

// BusinessMetricsConfig holds pipeline outcome metrics configuration
type BusinessMetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from defaults, an optional config file and
// environment variables. An empty configFile searches the standard paths.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("ATSMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/atsmatch/")
		v.AddConfigPath("$HOME/.atsmatch")
		v.AddConfigPath(".")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileUsed = v.ConfigFileUsed()
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	if err := config.validatePromptFiles(); err != nil {
		return nil, fmt.Errorf("prompt file validation failed: %w", err)
	}
	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks the loaded configuration for inconsistent values
func (c *Config) Validate() error {
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}
	if c.AI.RateLimit.Enabled && (c.AI.RateLimit.RequestsPerMin <= 0 || c.AI.RateLimit.BurstCapacity <= 0) {
		return fmt.Errorf("AI rate limit requires positive requestsPerMin and burstCapacity")
	}

	for name, op := range map[string]OperationAIConfig{
		OperationCategorize:  c.AI.Categorize,
		OperationExtractText: c.AI.ExtractText,
		OperationStructure:   c.AI.Structure,
	} {
		cb := op.CircuitBreaker
		if cb.Enabled && (cb.FailureThreshold <= 0 || cb.FailureThreshold > 1) {
			return fmt.Errorf("%s circuit breaker failureThreshold must be in (0, 1]", name)
		}
	}

	k := c.Keywords
	if k.MinKeywordLength < 1 || k.MaxKeywordLength < k.MinKeywordLength {
		return fmt.Errorf("invalid keyword length bounds: %d-%d", k.MinKeywordLength, k.MaxKeywordLength)
	}
	if k.MaxDescriptionLength <= k.MinDescriptionLength {
		return fmt.Errorf("keywords maxDescriptionLength must exceed minDescriptionLength")
	}
	if k.MaxItemsPerCategory <= 0 || k.ShortDescriptionLimit <= 0 || k.BasicExtractionLimit <= 0 {
		return fmt.Errorf("keyword limits must be positive")
	}
	if k.QualityGateMinItems < 0 {
		return fmt.Errorf("keywords qualityGateMinItems cannot be negative")
	}

	if c.Extraction.MaxInputChars <= 0 {
		return fmt.Errorf("extraction maxInputChars must be positive")
	}
	if c.Extraction.Attempts < 1 {
		return fmt.Errorf("extraction attempts must be at least 1")
	}
	if len(c.Extraction.Strategies) == 0 {
		return fmt.Errorf("at least one extraction strategy is required")
	}
	for _, s := range c.Extraction.Strategies {
		if !slices.Contains(KnownStrategies, s) {
			return fmt.Errorf("unknown extraction strategy: %s", s)
		}
	}

	if err := c.validateCredentials(); err != nil {
		return err
	}

	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	return nil
}

// KnownStrategies lists the extraction strategy names in their default order
var KnownStrategies = []string{"two-pass", "single-pass"}

func (c *Config) validateCredentials() error {
	cr := c.Credentials
	switch cr.Source {
	case "static":
		if cr.Refresh != "none" && cr.Refresh != "" {
			return fmt.Errorf("static credentials do not support refresh policy %q", cr.Refresh)
		}
	case "file":
		if cr.KeyFile == "" {
			return fmt.Errorf("credentials keyFile is required for the file source")
		}
		if cr.Refresh != "none" && cr.Refresh != "watch" {
			return fmt.Errorf("file credentials support refresh none or watch, got %q", cr.Refresh)
		}
	case "vault":
		if !c.Vault.Enabled {
			return fmt.Errorf("vault credentials require vault.enabled")
		}
		if c.Vault.Secrets.APIKeyPath == "" {
			return fmt.Errorf("vault credentials require vault.secrets.apiKeyPath")
		}
		if cr.Refresh != "none" && cr.Refresh != "poll" {
			return fmt.Errorf("vault credentials support refresh none or poll, got %q", cr.Refresh)
		}
		if cr.Refresh == "poll" && cr.PollInterval <= 0 {
			return fmt.Errorf("credentials pollInterval must be positive")
		}
	default:
		return fmt.Errorf("invalid credentials source: %s (must be 'static', 'file', or 'vault')", cr.Source)
	}
	return nil
}
