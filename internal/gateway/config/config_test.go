package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func parse(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	cfg := &Config{}
	var normErr error
	cmd := &cli.Command{
		Name:  "contentflow",
		Flags: Flags(cfg),
		Action: func(context.Context, *cli.Command) error {
			normErr = cfg.Normalize()
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"contentflow"}, args...)))
	return cfg, normErr
}

func TestDefaultsFallBackToFakeProviderLocally(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MINIO_ROOT_USER", "")
	t.Setenv("MINIO_ROOT_PASSWORD", "")

	cfg, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, ProviderFake, cfg.LLM.Provider)
	assert.Equal(t, "gemini-3-flash-preview", cfg.LLM.TextModel)
	assert.Equal(t, "imagen-4.0-generate-001", cfg.LLM.ImageModel)
	assert.Equal(t, time.Second, cfg.CloseDelay)
	assert.Equal(t, "typed", cfg.FailurePolicy)
	assert.Equal(t, "contentflow-assets", cfg.Export.Bucket)
	assert.Equal(t, 128, cfg.Export.CacheEntries)
	assert.False(t, cfg.Export.S3Enabled())
	assert.InDelta(t, 1.0, cfg.Tracing.SampleRate, 1e-9)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("CONTENTFLOW_FAILURE_POLICY", "fallback")
	t.Setenv("CONTENTFLOW_CLOSE_DELAY", "250ms")
	t.Setenv("EXPORT_S3_ENDPOINT", "minio:9000")
	t.Setenv("MINIO_ROOT_USER", "minio")
	t.Setenv("MINIO_ROOT_PASSWORD", "minio123")
	t.Setenv("LLM_RPS", "2.5")

	cfg, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "fallback", cfg.FailurePolicy)
	assert.Equal(t, 250*time.Millisecond, cfg.CloseDelay)
	assert.True(t, cfg.Export.S3Enabled())
	assert.Equal(t, "minio", cfg.Export.AccessKey)
	assert.Equal(t, "minio123", cfg.Export.SecretKey)
	assert.InDelta(t, 2.5, cfg.LLM.RPS, 1e-9)
}

func TestGeminiRequiresKeyOutsideLocal(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := parse(t, "--env", "production")
	require.Error(t, err)

	_, err = parse(t, "--env", "production", "--provider", "fake")
	require.NoError(t, err)
}

func TestUnknownProvider(t *testing.T) {
	_, err := parse(t, "--provider", "openai")
	require.Error(t, err)
}
