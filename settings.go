package agentbridge

import (
	"github.com/wagiedev/agent-bridge-go/internal/config"
	"github.com/wagiedev/agent-bridge-go/internal/telemetry"
)

// Settings is the process configuration read from AGENTBRIDGE_* environment
// variables and an optional YAML file named by AGENTBRIDGE_CONFIG_FILE.
type Settings = config.Settings

// LoadSettings reads Settings from the environment and the config file.
func LoadSettings() (*Settings, error) {
	return config.Load()
}

// WithSettings applies loaded settings. Options applied after it win.
func WithSettings(s *Settings) Option {
	return func(o *Options) {
		o.SignalingURL = s.SignalingURL
		o.ChannelLabel = s.ChannelLabel
		o.ICEServers = s.ICEServers
		o.HTTPTimeout = s.HTTPTimeout
		o.OpenTimeout = s.OpenTimeout
		o.Modalities = s.Modalities
		o.Instructions = s.Instructions
		o.Voice = s.Voice
		o.AutoRespond = s.AutoRespond
		o.MCPServers = append(o.MCPServers, s.MCPServers...)
	}
}

// ConsultConfigFromSettings returns the consultAPI configuration in s.
func ConsultConfigFromSettings(s *Settings) ConsultConfig {
	return ConsultConfig{
		Endpoint: s.ConsultantURL,
		Token:    s.ConsultantToken,
	}
}

// TelemetryConfig selects the OTLP collector for SetupTelemetry.
type TelemetryConfig = telemetry.Config

// TelemetryConfigFromSettings returns the OTLP configuration in s.
func TelemetryConfigFromSettings(s *Settings) TelemetryConfig {
	return TelemetryConfig{
		Endpoint: s.OtelExporterOtlpEndpoint,
		Insecure: s.OtelExporterOtlpInsecure,
	}
}

// SetupTelemetry installs the global OpenTelemetry tracer provider. Tool
// invocations are traced once it is installed. The returned function flushes
// and stops the provider.
var SetupTelemetry = telemetry.Setup
