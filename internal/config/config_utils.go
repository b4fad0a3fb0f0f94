package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	c.applyObservabilityDefaults()
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"ATSMATCH_AI_APIKEY",
		"ATSMATCH_AI_MODEL",
		"ATSMATCH_APP_LOGLEVEL",
		"ATSMATCH_CREDENTIALS_SOURCE",
		"ATSMATCH_VAULT_ENABLED",
		"GEMINI_API_KEY", // Legacy support
	}
	for _, envVar := range envVars {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(envVar), "key") {
			value = "***MASKED***"
		}
		log.Printf("[CONFIG]   %s=%s", envVar, value)
	}

	keyState := "***NOT SET***"
	if c.AI.APIKey != "" {
		keyState = "***CONFIGURED***"
	}
	log.Printf("[CONFIG] AI: provider=%s model=%s apiKey=%s credentials=%s/%s",
		c.AI.Provider, c.AI.Model, keyState, c.Credentials.Source, c.Credentials.Refresh)
	for _, op := range Operations {
		cfg := c.GetOperationConfig(op)
		log.Printf("[CONFIG] %s: model=%s timeout=%s", op, cfg.Model, *cfg.Timeout)
	}
}
