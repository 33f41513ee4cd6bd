package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/wagiedev/agent-bridge-go/internal/mcp"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "agentbridge"

// FileConfig defines the structure loaded from the YAML configuration file.
type FileConfig struct {
	Instructions string             `yaml:"instructions"`
	Voice        string             `yaml:"voice"`
	MCPServers   []mcp.ServerConfig `yaml:"mcp_servers"`
}

// Settings holds the process configuration, merged from file and environment.
// Fields are loaded from environment variables with the prefix "AGENTBRIDGE_",
// overriding file settings.
type Settings struct {
	ConfigFile string `envconfig:"CONFIG_FILE"`

	SignalingURL    string        `envconfig:"SIGNALING_URL" default:"http://127.0.0.1:8813"`
	ConsultantURL   string        `envconfig:"CONSULTANT_URL" default:"http://localhost:8088/v1/consultant/chat_api/"`
	ConsultantToken string        `envconfig:"CONSULTANT_TOKEN"`
	ChannelLabel    string        `envconfig:"CHANNEL_LABEL" default:"response"`
	Modalities      []string      `envconfig:"MODALITIES" default:"text,audio"`
	Instructions    string        `envconfig:"INSTRUCTIONS"`
	Voice           string        `envconfig:"VOICE"`
	AutoRespond     bool          `envconfig:"AUTO_RESPOND" default:"false"`
	ICEServers      []string      `envconfig:"ICE_SERVERS"`
	HTTPTimeout     time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	OpenTimeout     time.Duration `envconfig:"OPEN_TIMEOUT" default:"30s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`

	OtelExporterOtlpEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`

	// MCPServers is only configurable from the file.
	MCPServers []mcp.ServerConfig `ignored:"true"`
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel string.
func (s *Settings) ParsedLogLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads the environment to find the optional config file, applies the
// file, then applies the environment again so variables win over the file.
func Load() (*Settings, error) {
	var settings Settings
	if err := envconfig.Process(EnvPrefix, &settings); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if settings.ConfigFile == "" {
		return &settings, nil
	}

	data, err := os.ReadFile(settings.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", settings.ConfigFile, err)
	}

	var file FileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", settings.ConfigFile, err)
	}

	settings.Instructions = file.Instructions
	settings.Voice = file.Voice

	for _, server := range file.MCPServers {
		if err := server.Validate(); err != nil {
			return nil, fmt.Errorf("config file %q: %w", settings.ConfigFile, err)
		}
	}

	settings.MCPServers = file.MCPServers

	// Second pass: fields without defaults keep the file value unless set.
	if err := envconfig.Process(EnvPrefix, &settings); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	return &settings, nil
}
