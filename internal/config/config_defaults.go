package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 45*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.maxOutputTokens", 2048)
	v.SetDefault("ai.useSystemPrompts", true)

	// Outbound throttle shared by all operations
	v.SetDefault("ai.rateLimit.enabled", true)
	v.SetDefault("ai.rateLimit.requestsPerMin", 60)
	v.SetDefault("ai.rateLimit.burstCapacity", 5)

	// Keyword categorization: short, low temperature answers
	v.SetDefault("ai.categorize.timeout", 30*time.Second)
	v.SetDefault("ai.categorize.temperature", 0.1)
	v.SetDefault("ai.categorize.maxOutputTokens", 1024)

	// Free-form resume pass
	v.SetDefault("ai.extractText.timeout", 60*time.Second)
	v.SetDefault("ai.extractText.temperature", 0.0)
	v.SetDefault("ai.extractText.maxOutputTokens", 4096)

	// Structured resume pass
	v.SetDefault("ai.structure.timeout", 60*time.Second)
	v.SetDefault("ai.structure.temperature", 0.0)
	v.SetDefault("ai.structure.maxOutputTokens", 8192)

	for _, op := range Operations {
		prefix := "ai." + op + ".circuitBreaker."
		v.SetDefault(prefix+"enabled", true)
		v.SetDefault(prefix+"maxRequests", 3)
		v.SetDefault(prefix+"interval", 60*time.Second)
		v.SetDefault(prefix+"timeout", 60*time.Second)
		v.SetDefault(prefix+"minRequests", 3)
		v.SetDefault(prefix+"failureThreshold", 0.6)
	}

	// Keyword categorization
	v.SetDefault("keywords.maxDescriptionLength", 5000)
	v.SetDefault("keywords.minDescriptionLength", 100)
	v.SetDefault("keywords.shortDescriptionLimit", 5)
	v.SetDefault("keywords.basicExtractionLimit", 20)
	v.SetDefault("keywords.maxItemsPerCategory", 10)
	v.SetDefault("keywords.qualityGateMinItems", 5)
	v.SetDefault("keywords.minKeywordLength", 2)
	v.SetDefault("keywords.maxKeywordLength", 50)

	// Scoring
	v.SetDefault("scoring.meaningfulSummaryLength", 20)
	v.SetDefault("scoring.missingKeywordsInTip", 5)

	// Resume extraction
	v.SetDefault("extraction.maxInputChars", 30000)
	v.SetDefault("extraction.attempts", 1)
	v.SetDefault("extraction.strategies", KnownStrategies)

	// Rule tables
	v.SetDefault("rules.overrideFile", "")

	// Credentials
	v.SetDefault("credentials.source", "static")
	v.SetDefault("credentials.refresh", "none")
	v.SetDefault("credentials.keyFile", "")
	v.SetDefault("credentials.pollInterval", 5*time.Minute)
	v.SetDefault("credentials.debounceDelay", time.Second)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeyPath", "")
	v.SetDefault("vault.secrets.apiKeyField", "api_key")

	// Observability Configuration
	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.serviceName", "atsmatch")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)

	v.SetDefault("observability.console.prettyPrint", true)

	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
