package observability

import (
	"resumeforge/internal/config"
)

const defaultServiceName = "resumeforge"

// GetObservabilityConfig derives the manager configuration from the loaded
// config. A nil config yields a disabled manager.
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:    defaultServiceName,
			ServiceVersion: version,
			Prometheus:     PrometheusConfig{Endpoint: defaultMetricsEndpoint},
		}
	}

	obs := cfg.Observability
	out := ObservabilityConfig{
		ServiceName:    obs.ServiceName,
		ServiceVersion: obs.ServiceVersion,
		Enabled:        obs.Enabled,
		ConsoleOutput:  obs.ConsoleOutput,
		PrettyPrint:    obs.Console.PrettyPrint,
		SampleRate:     obs.SampleRate,
		Prometheus: PrometheusConfig{
			Enabled:  obs.Prometheus.Enabled,
			Endpoint: obs.Prometheus.Endpoint,
			Port:     obs.Prometheus.Port,
		},
	}
	if out.ServiceName == "" {
		out.ServiceName = defaultServiceName
	}
	if out.Prometheus.Endpoint == "" {
		out.Prometheus.Endpoint = defaultMetricsEndpoint
	}
	if out.ServiceVersion == "" {
		out.ServiceVersion = version
	}
	return out
}
