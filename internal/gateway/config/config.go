package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	LogFile       string
	SeedPath      string
	CloseDelay    time.Duration
	FailurePolicy string
	CORSOrigins   []string
	LLM           LLMConfig
	Export        ExportConfig
	Tracing       TracingConfig
}

type LLMConfig struct {
	Provider   string
	APIKey     string
	TextModel  string
	ImageModel string
	RPS        float64
	Burst      int
}

type ExportConfig struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UseSSL       bool
	CacheEntries int
}

// S3Enabled reports whether exports go to an S3-compatible bucket instead of
// process memory.
func (c ExportConfig) S3Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

type TracingConfig struct {
	Endpoint   string
	SampleRate float64
}

const (
	ProviderGemini = "gemini"
	ProviderFake   = "fake"
)

// Flags binds every setting to a flag with an environment variable source.
func Flags(cfg *Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "port", Usage: "listen address", Value: ":8081", Sources: cli.EnvVars("PORT"), Destination: &cfg.Port},
		&cli.StringFlag{Name: "env", Usage: "deployment environment", Value: "local", Sources: cli.EnvVars("APP_ENV"), Destination: &cfg.Env},
		&cli.StringFlag{Name: "log-level", Usage: "log level (debug, info, warn, error, fatal)", Value: "info", Sources: cli.EnvVars("CONTENTFLOW_LOG_LEVEL"), Destination: &cfg.LogLevel},
		&cli.StringFlag{Name: "log-file", Usage: "path to log file (stdout when empty)", Sources: cli.EnvVars("CONTENTFLOW_LOG_FILE"), Destination: &cfg.LogFile},
		&cli.StringFlag{Name: "seed", Usage: "checklist seed YAML (embedded seed when empty)", Sources: cli.EnvVars("CONTENTFLOW_SEED"), Destination: &cfg.SeedPath},
		&cli.DurationFlag{Name: "close-delay", Usage: "how long a saved session stays open", Value: time.Second, Sources: cli.EnvVars("CONTENTFLOW_CLOSE_DELAY"), Destination: &cfg.CloseDelay},
		&cli.StringFlag{Name: "failure-policy", Usage: "how provider failures are shown (typed, fallback)", Value: "typed", Sources: cli.EnvVars("CONTENTFLOW_FAILURE_POLICY"), Destination: &cfg.FailurePolicy},

		&cli.StringSliceFlag{Name: "cors-origin", Usage: "allowed browser origins (any when empty)", Sources: cli.EnvVars("CONTENTFLOW_CORS_ORIGINS"), Destination: &cfg.CORSOrigins},

		&cli.StringFlag{Name: "provider", Usage: "generation provider (gemini, fake)", Sources: cli.EnvVars("CONTENTFLOW_PROVIDER"), Destination: &cfg.LLM.Provider},
		&cli.StringFlag{Name: "gemini-api-key", Usage: "Gemini API key", Sources: cli.EnvVars("GEMINI_API_KEY"), Destination: &cfg.LLM.APIKey},
		&cli.StringFlag{Name: "text-model", Usage: "text model id", Value: "gemini-3-flash-preview", Sources: cli.EnvVars("CONTENTFLOW_TEXT_MODEL"), Destination: &cfg.LLM.TextModel},
		&cli.StringFlag{Name: "image-model", Usage: "image model id", Value: "imagen-4.0-generate-001", Sources: cli.EnvVars("CONTENTFLOW_IMAGE_MODEL"), Destination: &cfg.LLM.ImageModel},
		&cli.FloatFlag{Name: "llm-rps", Usage: "provider requests per second (0 = unlimited)", Sources: cli.EnvVars("LLM_RPS"), Destination: &cfg.LLM.RPS},
		&cli.IntFlag{Name: "llm-burst", Usage: "provider burst size", Sources: cli.EnvVars("LLM_BURST"), Destination: &cfg.LLM.Burst},

		&cli.StringFlag{Name: "export-s3-endpoint", Usage: "S3/MinIO endpoint for exports (memory when empty)", Sources: cli.EnvVars("EXPORT_S3_ENDPOINT"), Destination: &cfg.Export.Endpoint},
		&cli.StringFlag{Name: "export-s3-region", Value: "us-east-1", Sources: cli.EnvVars("EXPORT_S3_REGION"), Destination: &cfg.Export.Region},
		&cli.StringFlag{Name: "export-s3-access-key", Sources: cli.EnvVars("EXPORT_S3_ACCESS_KEY"), Destination: &cfg.Export.AccessKey},
		&cli.StringFlag{Name: "export-s3-secret-key", Sources: cli.EnvVars("EXPORT_S3_SECRET_KEY"), Destination: &cfg.Export.SecretKey},
		&cli.StringFlag{Name: "export-s3-bucket", Value: "contentflow-assets", Sources: cli.EnvVars("EXPORT_S3_BUCKET"), Destination: &cfg.Export.Bucket},
		&cli.BoolFlag{Name: "export-s3-use-ssl", Sources: cli.EnvVars("EXPORT_S3_USE_SSL"), Destination: &cfg.Export.UseSSL},
		&cli.IntFlag{Name: "export-cache-entries", Value: 128, Sources: cli.EnvVars("EXPORT_CACHE_ENTRIES"), Destination: &cfg.Export.CacheEntries},

		&cli.StringFlag{Name: "otel-endpoint", Usage: "OTLP gRPC collector (tracing off when empty)", Sources: cli.EnvVars("OTEL_EXPORTER_OTLP_ENDPOINT"), Destination: &cfg.Tracing.Endpoint},
		&cli.FloatFlag{Name: "otel-sample-rate", Value: 1.0, Sources: cli.EnvVars("OTEL_SAMPLE_RATE"), Destination: &cfg.Tracing.SampleRate},
	}
}

// Normalize fills derived defaults and validates cross-field settings.
func (c *Config) Normalize() error {
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = ":8081"
	}
	if !strings.HasPrefix(c.Port, ":") && !strings.Contains(c.Port, ":") {
		c.Port = ":" + c.Port
	}
	c.Env = firstNonEmpty(strings.TrimSpace(c.Env), "local")
	if c.CloseDelay < 0 {
		return fmt.Errorf("close delay must not be negative")
	}

	provider := strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	key := strings.TrimSpace(c.LLM.APIKey)
	switch provider {
	case "":
		provider = ProviderGemini
		if key == "" && c.IsLocal() {
			provider = ProviderFake
		}
	case ProviderGemini, ProviderFake:
	default:
		return fmt.Errorf("unknown provider %q", c.LLM.Provider)
	}
	if provider == ProviderGemini && key == "" {
		return fmt.Errorf("gemini api key is required (set GEMINI_API_KEY or CONTENTFLOW_PROVIDER=fake)")
	}
	c.LLM.Provider = provider
	c.LLM.APIKey = key

	c.Export.AccessKey = firstNonEmpty(strings.TrimSpace(c.Export.AccessKey), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER")))
	c.Export.SecretKey = firstNonEmpty(strings.TrimSpace(c.Export.SecretKey), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD")))
	c.Export.Region = firstNonEmpty(strings.TrimSpace(c.Export.Region), "us-east-1")
	c.Export.Bucket = firstNonEmpty(strings.TrimSpace(c.Export.Bucket), "contentflow-assets")
	if c.Export.CacheEntries <= 0 {
		c.Export.CacheEntries = 128
	}
	return nil
}

func (c *Config) IsLocal() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "local")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
