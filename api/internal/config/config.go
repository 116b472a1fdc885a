package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	TransportREST = "rest"
	TransportSDK  = "sdk"

	OCRCommand = "command"
	OCRLibrary = "library"
)

type Config struct {
	Port string `mapstructure:"port"`

	GeminiAPIKey    string        `mapstructure:"gemini_api_key"`
	GeminiModel     string        `mapstructure:"gemini_model"`
	GeminiBaseURL   string        `mapstructure:"gemini_base_url"`
	GeminiTimeout   time.Duration `mapstructure:"gemini_timeout"`
	GeminiTransport string        `mapstructure:"gemini_transport"`

	OCREngine      string `mapstructure:"ocr_engine"`
	TesseractCmd   string `mapstructure:"tesseract_cmd"`
	TessdataPrefix string `mapstructure:"tessdata_prefix"`

	CORSAllowedOrigins   []string `mapstructure:"cors_allowed_origins"`
	CORSAllowCredentials bool     `mapstructure:"cors_allow_credentials"`

	TelegramBotToken string `mapstructure:"telegram_bot_token"`
	WebhookURL       string `mapstructure:"webhook_url"`
}

var defaults = map[string]any{
	"port":                   "8000",
	"gemini_api_key":         "",
	"gemini_model":           "gemini-2.5-flash",
	"gemini_base_url":        "https://generativelanguage.googleapis.com",
	"gemini_timeout":         "30s",
	"gemini_transport":       TransportREST,
	"ocr_engine":             OCRCommand,
	"tesseract_cmd":          "",
	"tessdata_prefix":        "",
	"cors_allowed_origins":   []string{"http://localhost:3000"},
	"cors_allow_credentials": true,
	"telegram_bot_token":     "",
	"webhook_url":            "",
}

// Load reads defaults, then the optional YAML file at path, then the
// environment. Every key is overridable by its upper-cased env name.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	c.GeminiAPIKey = strings.TrimSpace(c.GeminiAPIKey)
	c.GeminiModel = strings.TrimSpace(c.GeminiModel)
	c.GeminiBaseURL = strings.TrimRight(strings.TrimSpace(c.GeminiBaseURL), "/")
	c.GeminiTransport = strings.ToLower(strings.TrimSpace(c.GeminiTransport))
	c.OCREngine = strings.ToLower(strings.TrimSpace(c.OCREngine))
	c.TesseractCmd = strings.TrimSpace(c.TesseractCmd)

	origins := make([]string, 0, len(c.CORSAllowedOrigins))
	for _, o := range c.CORSAllowedOrigins {
		for _, part := range strings.Split(o, ",") {
			if p := strings.TrimRight(strings.TrimSpace(part), "/"); p != "" {
				origins = append(origins, p)
			}
		}
	}
	c.CORSAllowedOrigins = origins
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is empty")
	}
	if c.GeminiModel == "" {
		return fmt.Errorf("gemini_model is empty")
	}
	if c.GeminiTimeout <= 0 {
		return fmt.Errorf("gemini_timeout must be positive, got %s", c.GeminiTimeout)
	}
	switch c.GeminiTransport {
	case TransportREST, TransportSDK:
	default:
		return fmt.Errorf("unknown gemini_transport %q; use %q or %q", c.GeminiTransport, TransportREST, TransportSDK)
	}
	switch c.OCREngine {
	case OCRCommand, OCRLibrary:
	default:
		return fmt.Errorf("unknown ocr_engine %q; use %q or %q", c.OCREngine, OCRCommand, OCRLibrary)
	}
	return nil
}
