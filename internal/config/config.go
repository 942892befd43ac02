package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ironsheep/pdf-redact-mcp/internal/redaction"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when REDACT_MCP_CONFIG is unset.
const DefaultPath = "redact-mcp.yml"

// Environment variables that override file settings.
const (
	EnvConfigPath = "REDACT_MCP_CONFIG"
	EnvLogLevel   = "REDACT_MCP_LOG_LEVEL"
	EnvRedisURL   = "REDACT_MCP_REDIS_URL"
	EnvOutputDir  = "REDACT_MCP_OUTPUT_DIR"
	EnvLicenseKey = "UNIDOC_LICENSE_API_KEY"
)

type Config struct {
	DisplayWidth   int     `yaml:"display_width"`
	RenderScale    float64 `yaml:"render_scale"`
	MaxUploadBytes int64   `yaml:"max_upload_bytes"`
	OutputDir      string  `yaml:"output_dir"`
	LicenseKey     string  `yaml:"license_key"`
	LogLevel       string  `yaml:"log_level"`

	Label struct {
		Text             string                `yaml:"text"`
		FallbackText     string                `yaml:"fallback_text"`
		MinPreviewHeight float64               `yaml:"min_preview_height"`
		Preview          redaction.LabelSizing `yaml:"preview"`
		Output           redaction.LabelSizing `yaml:"output"`
	} `yaml:"label"`

	Colors struct {
		RedactionFill    string  `yaml:"redaction_fill"`
		PreviewFill      string  `yaml:"preview_fill"`
		PreviewOutline   string  `yaml:"preview_outline"`
		Label            string  `yaml:"label"`
		Selection        string  `yaml:"selection"`
		SelectionOpacity float64 `yaml:"selection_opacity"`
	} `yaml:"colors"`

	Cache struct {
		RedisURL string        `yaml:"redis_url"`
		Prefix   string        `yaml:"prefix"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"cache"`

	OCR struct {
		Language      string   `yaml:"language"`
		MinConfidence float64  `yaml:"min_confidence"`
		Patterns      []string `yaml:"patterns"`
		Padding       float64  `yaml:"padding"`
	} `yaml:"ocr"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	c := &Config{
		DisplayWidth:   700,
		RenderScale:    1.5,
		MaxUploadBytes: 32 << 20,
		OutputDir:      ".",
		LogLevel:       "info",
	}
	c.Label.Text = "KVKK nedeniyle silinmiştir"
	c.Label.FallbackText = "KVKK redacted"
	c.Label.MinPreviewHeight = 5
	c.Label.Preview = redaction.PreviewSizing()
	c.Label.Output = redaction.OutputSizing()

	c.Colors.RedactionFill = "#FFFFFF"
	c.Colors.PreviewFill = "#FFFFFF"
	c.Colors.PreviewOutline = "#CCCCCC"
	c.Colors.Label = "#FF0000"
	c.Colors.Selection = "#0096FF"
	c.Colors.SelectionOpacity = 0.2

	c.Cache.Prefix = "redact"
	c.Cache.TTL = time.Hour

	c.OCR.Language = "eng"
	c.OCR.MinConfidence = 0.5
	c.OCR.Padding = 2
	return c
}

// Load reads the YAML file at path on top of the defaults. A missing file is
// not an error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv(EnvLicenseKey); v != "" {
		c.LicenseKey = v
	}
}

// Validate checks the settings that would otherwise fail deep inside a request.
func (c *Config) Validate() error {
	if c.DisplayWidth <= 0 {
		return fmt.Errorf("display_width must be positive, got %d", c.DisplayWidth)
	}
	if c.RenderScale <= 0 {
		return fmt.Errorf("render_scale must be positive, got %g", c.RenderScale)
	}
	for name, s := range map[string]redaction.LabelSizing{"preview": c.Label.Preview, "output": c.Label.Output} {
		if s.Min <= 0 || s.Max < s.Min {
			return fmt.Errorf("label.%s range [%d, %d] is invalid", name, s.Min, s.Max)
		}
	}
	if c.Colors.SelectionOpacity < 0 || c.Colors.SelectionOpacity > 1 {
		return fmt.Errorf("colors.selection_opacity must be within [0, 1], got %g", c.Colors.SelectionOpacity)
	}
	if c.OCR.Padding < 0 {
		return fmt.Errorf("ocr.padding must not be negative, got %g", c.OCR.Padding)
	}
	return nil
}

// Debug reports whether debug logging was requested.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}
