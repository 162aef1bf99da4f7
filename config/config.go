/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package config provides access to application configuration for both the
// MCP server and the gateway. Configuration is environment-driven; an
// optional YAML file supplies base values that environment variables
// override. Values are deployment detail, names are the contract.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leadlovers/leadlovers-mcp/global"
)

// Config provides access to application configuration
type Config struct {
	configPath string
	data       *configData
}

// configData holds the parsed configuration (internal)
type configData struct {
	LeadLoversAPIURL   string `yaml:"leadlovers_api_url"`
	LeadLoversAPIToken string `yaml:"leadlovers_api_token"`
	SSOAPIURL          string `yaml:"sso_api_url"`

	AIProvider     string `yaml:"ai_provider"` // "openai" or "anthropic"
	OpenAIAPIKey   string `yaml:"openai_api_key"`
	OpenAIModel    string `yaml:"openai_model"`
	AnthropicKey   string `yaml:"anthropic_api_key"`
	AnthropicModel string `yaml:"anthropic_model"`

	BeeFreeAPIURL   string `yaml:"beefree_api_url"`
	BeeFreeAPIToken string `yaml:"beefree_api_token"`

	RedisURL  string `yaml:"redis_url"`
	JWTSecret string `yaml:"jwt_secret"`

	GatewayAddr      string `yaml:"gateway_addr"`
	MCPServerCommand string `yaml:"mcp_server_command"`

	ToolTimeoutSeconds  int `yaml:"tool_timeout_seconds"`
	MaxRetries          int `yaml:"max_retries"`
	MaxBulkOperations   int `yaml:"max_bulk_operations"`
	RateLimitRequests   int `yaml:"rate_limit_requests"`
	RateLimitWindowMS   int `yaml:"rate_limit_window_ms"`
	ConnectionTTL       int `yaml:"connection_ttl_seconds"`
	ConversationTTL     int `yaml:"conversation_ttl_seconds"`
	TranscriptMaxSize   int `yaml:"transcript_max_bytes"`
	LogLevel            string `yaml:"log_level"`
	LogFile             string `yaml:"log_file"`
}

// Option configures a Config
type Option func(*Config)

// WithConfigPath sets an explicit YAML config file path
func WithConfigPath(path string) Option {
	return func(c *Config) {
		c.configPath = path
	}
}

// New creates a new Config instance
func New(opts ...Option) *Config {
	c := &Config{data: &configData{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the optional YAML file, applies environment overrides, fills
// defaults and validates. Missing file is not an error; env alone is a
// complete configuration.
func (c *Config) Load() error {
	if c.configPath == "" {
		c.configPath = os.Getenv("LEADLOVERS_MCP_CONFIG")
	}
	if c.configPath != "" {
		content, err := os.ReadFile(c.configPath)
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", c.configPath, err)
		}
		if err := yaml.Unmarshal(content, c.data); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", c.configPath, err)
		}
	}

	c.applyEnv()
	c.applyDefaults()
	return c.validate()
}

func (c *Config) applyEnv() {
	d := c.data
	envString(&d.LeadLoversAPIURL, "LEADLOVERS_API_URL")
	envString(&d.LeadLoversAPIToken, "LEADLOVERS_API_TOKEN")
	envString(&d.SSOAPIURL, "SSO_API_URL")
	envString(&d.AIProvider, "AI_PROVIDER")
	envString(&d.OpenAIAPIKey, "OPENAI_API_KEY")
	envString(&d.OpenAIModel, "OPENAI_MODEL")
	envString(&d.AnthropicKey, "ANTHROPIC_API_KEY")
	envString(&d.AnthropicModel, "ANTHROPIC_MODEL")
	envString(&d.BeeFreeAPIURL, "BEEFREE_API_URL")
	envString(&d.BeeFreeAPIToken, "BEEFREE_API_TOKEN")
	envString(&d.RedisURL, "REDIS_URL")
	envString(&d.JWTSecret, "JWT_SECRET")
	envString(&d.GatewayAddr, "GATEWAY_ADDR")
	envString(&d.MCPServerCommand, "MCP_SERVER_COMMAND")
	envInt(&d.ToolTimeoutSeconds, "TOOL_TIMEOUT")
	envInt(&d.MaxRetries, "MAX_RETRIES")
	envInt(&d.MaxBulkOperations, "MAX_BULK_OPERATIONS")
	envInt(&d.RateLimitRequests, "RATE_LIMIT_REQUESTS")
	envInt(&d.RateLimitWindowMS, "RATE_LIMIT_WINDOW_MS")
	envInt(&d.ConnectionTTL, "CONNECTION_TTL")
	envInt(&d.ConversationTTL, "CONVERSATION_TTL")
	envInt(&d.TranscriptMaxSize, "TRANSCRIPT_MAX_BYTES")
	envString(&d.LogLevel, "LOG_LEVEL")
	envString(&d.LogFile, "LOG_FILE")
}

func envString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func envInt(dst *int, name string) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) applyDefaults() {
	d := c.data
	if d.LeadLoversAPIURL == "" {
		d.LeadLoversAPIURL = "https://llapi.leadlovers.com/webapi"
	}
	if d.SSOAPIURL == "" {
		d.SSOAPIURL = "https://globalnotifications-api.leadlovers.com"
	}
	if d.AIProvider == "" {
		d.AIProvider = "anthropic"
	}
	// Stored lowercased so every consumer can compare exactly
	d.AIProvider = strings.ToLower(d.AIProvider)
	if d.OpenAIModel == "" {
		d.OpenAIModel = "gpt-4o-mini"
	}
	if d.AnthropicModel == "" {
		d.AnthropicModel = "claude-3-5-sonnet-20241022"
	}
	if d.BeeFreeAPIURL == "" {
		d.BeeFreeAPIURL = "https://api.getbee.io/v1"
	}
	if d.RedisURL == "" {
		d.RedisURL = "redis://localhost:6379"
	}
	if d.GatewayAddr == "" {
		d.GatewayAddr = ":3001"
	}
	if d.ToolTimeoutSeconds <= 0 {
		d.ToolTimeoutSeconds = global.DefaultToolTimeout
	}
	if d.MaxRetries < 0 {
		d.MaxRetries = 0
	}
	if d.MaxRetries == 0 {
		d.MaxRetries = global.DefaultMaxRetries
	}
	if d.MaxRetries > global.MaxRetriesLimit {
		d.MaxRetries = global.MaxRetriesLimit
	}
	if d.MaxBulkOperations <= 0 {
		d.MaxBulkOperations = global.DefaultMaxBulkOperations
	}
	if d.RateLimitRequests <= 0 {
		d.RateLimitRequests = global.DefaultRateLimitRequests
	}
	if d.RateLimitWindowMS <= 0 {
		d.RateLimitWindowMS = global.DefaultRateLimitWindow
	}
	if d.ConnectionTTL <= 0 {
		d.ConnectionTTL = global.DefaultConnectionTTL
	}
	if d.ConversationTTL <= 0 {
		d.ConversationTTL = global.DefaultConversationTTL
	}
	if d.TranscriptMaxSize <= 0 {
		d.TranscriptMaxSize = global.DefaultTranscriptMaxSize
	}
	if d.LogLevel == "" {
		d.LogLevel = global.LogLevelInfo
	}
}

func (c *Config) validate() error {
	d := c.data
	if d.LeadLoversAPIToken == "" {
		// The MCP server can start without a token; every upstream call will
		// fail and be reported through the normal failure path. Warned at
		// startup by the caller rather than rejected here.
		_ = d.LeadLoversAPIToken
	}
	switch d.AIProvider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("invalid ai_provider %q: must be openai or anthropic", d.AIProvider)
	}
	return nil
}

// ConfigPath returns the path of the loaded YAML file, if any
func (c *Config) ConfigPath() string {
	return c.configPath
}

// LeadLoversAPIURL returns the upstream CRM base URL
func (c *Config) LeadLoversAPIURL() string {
	return c.data.LeadLoversAPIURL
}

// LeadLoversAPIToken returns the upstream CRM bearer token
func (c *Config) LeadLoversAPIToken() string {
	return c.data.LeadLoversAPIToken
}

// SSOAPIURL returns the LeadLovers SSO base URL
func (c *Config) SSOAPIURL() string {
	return c.data.SSOAPIURL
}

// AIProvider returns the configured AI backend name
func (c *Config) AIProvider() string {
	return strings.ToLower(c.data.AIProvider)
}

// OpenAIAPIKey returns the OpenAI credential
func (c *Config) OpenAIAPIKey() string {
	return c.data.OpenAIAPIKey
}

// OpenAIModel returns the OpenAI model identifier
func (c *Config) OpenAIModel() string {
	return c.data.OpenAIModel
}

// AnthropicAPIKey returns the Anthropic credential
func (c *Config) AnthropicAPIKey() string {
	return c.data.AnthropicKey
}

// AnthropicModel returns the Anthropic model identifier
func (c *Config) AnthropicModel() string {
	return c.data.AnthropicModel
}

// BeeFreeAPIURL returns the BeeFree conversion API base URL
func (c *Config) BeeFreeAPIURL() string {
	return c.data.BeeFreeAPIURL
}

// BeeFreeAPIToken returns the BeeFree credential
func (c *Config) BeeFreeAPIToken() string {
	return c.data.BeeFreeAPIToken
}

// RedisURL returns the shared cache connection URL
func (c *Config) RedisURL() string {
	return c.data.RedisURL
}

// JWTSecret returns the gateway session-token signing secret
func (c *Config) JWTSecret() string {
	return c.data.JWTSecret
}

// GatewayAddr returns the gateway listen address
func (c *Config) GatewayAddr() string {
	return c.data.GatewayAddr
}

// MCPServerCommand returns the command the gateway spawns for the stdio
// MCP bridge (default: the mcp-server binary next to the gateway)
func (c *Config) MCPServerCommand() string {
	if c.data.MCPServerCommand == "" {
		return "leadlovers-mcp-server"
	}
	return c.data.MCPServerCommand
}

// ToolTimeout returns the global per-tool-call timeout
func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.data.ToolTimeoutSeconds) * time.Second
}

// MaxRetries returns the bounded retry count for idempotent upstream reads
func (c *Config) MaxRetries() int {
	return c.data.MaxRetries
}

// MaxBulkOperations returns the bulk-operation ceiling
func (c *Config) MaxBulkOperations() int {
	return c.data.MaxBulkOperations
}

// RateLimitRequests returns the per-user request budget per window
func (c *Config) RateLimitRequests() int {
	return c.data.RateLimitRequests
}

// RateLimitWindow returns the rate-limit window duration
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.data.RateLimitWindowMS) * time.Millisecond
}

// ConnectionTTL returns the registry entry lifetime
func (c *Config) ConnectionTTL() time.Duration {
	return time.Duration(c.data.ConnectionTTL) * time.Second
}

// ConversationTTL returns the conversation-state lifetime
func (c *Config) ConversationTTL() time.Duration {
	return time.Duration(c.data.ConversationTTL) * time.Second
}

// TranscriptMaxSize returns the byte cap kept per conversation transcript
func (c *Config) TranscriptMaxSize() int {
	return c.data.TranscriptMaxSize
}

// LogLevel returns the minimum log level
func (c *Config) LogLevel() string {
	return strings.ToUpper(c.data.LogLevel)
}

// LogFile returns the optional log file path ("" means stderr)
func (c *Config) LogFile() string {
	return c.data.LogFile
}

// HasAPIToken reports whether the upstream CRM credential is configured
func (c *Config) HasAPIToken() bool {
	return c.data.LeadLoversAPIToken != ""
}
