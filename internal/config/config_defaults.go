package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.baseURL", "")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)

	// Drafting benefits from some variety, parsing does not.
	setOperationDefaults(v, OperationGenerate, 90*time.Second, 2, 0.4)
	setOperationDefaults(v, OperationAnalyze, 60*time.Second, 2, 0.2)
	setOperationDefaults(v, OperationCorrect, 90*time.Second, 2, 0.3)
	setOperationDefaults(v, OperationParseJob, 45*time.Second, 3, 0.1)
	setOperationDefaults(v, OperationParseResume, 60*time.Second, 3, 0.1)

	// Workflow
	v.SetDefault("workflow.maxIterations", 3)
	v.SetDefault("workflow.extractor", "brace")

	// Ingest
	v.SetDefault("ingest.chunkSize", 2000)
	v.SetDefault("ingest.chunkOverlap", 200)
	v.SetDefault("ingest.concurrency", 4)
	v.SetDefault("ingest.fetchTimeout", 30*time.Second)
	v.SetDefault("ingest.userAgent", "Mozilla/5.0 (compatible; resumeforge/1.0)")
	v.SetDefault("ingest.requestsPerSecond", 1.0)
	v.SetDefault("ingest.maxPageBytes", 5*1024*1024)

	// Export and run history
	v.SetDefault("export.outputDir", "resumes")
	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", "resumeforge.db")

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	// A tailoring run makes several model calls in a row.
	v.SetDefault("server.writeTimeout", 10*time.Minute)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 1024*1024)
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.promptWatch.enabled", false)
	v.SetDefault("server.promptWatch.debounceDelay", time.Second)
	v.SetDefault("server.secretRefresh.enabled", false)
	v.SetDefault("server.secretRefresh.pollInterval", 5*time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "yaml", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 10*1024*1024)

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.aiKey", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.serviceName", "resumeforge")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.workflow.enabled", true)
	v.SetDefault("observability.customMetrics.trackRateLimits", true)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}

func setOperationDefaults(v *viper.Viper, op string, timeout time.Duration, retries int, temperature float64) {
	prefix := "ai." + op + "."
	v.SetDefault(prefix+"model", "")
	v.SetDefault(prefix+"timeout", timeout)
	v.SetDefault(prefix+"maxRetries", retries)
	v.SetDefault(prefix+"temperature", temperature)
	v.SetDefault(prefix+"useSystemPrompts", true)

	v.SetDefault(prefix+"circuitBreaker.enabled", true)
	v.SetDefault(prefix+"circuitBreaker.maxRequests", 3)
	v.SetDefault(prefix+"circuitBreaker.interval", 60*time.Second)
	v.SetDefault(prefix+"circuitBreaker.timeout", 60*time.Second)
	v.SetDefault(prefix+"circuitBreaker.minRequests", 3)
	v.SetDefault(prefix+"circuitBreaker.failureThreshold", 0.6)
}
