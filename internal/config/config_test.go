package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config search path at an empty dir so a developer's
// own learnhub.yaml never leaks into a test.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Chdir(dir)
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.API.Timeout)
	assert.Equal(t, "http://localhost:3000", cfg.Chat.ProxyURL)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, 30, cfg.Server.RateLimit)
	assert.Equal(t, 5, cfg.Server.Burst)
	assert.Equal(t, "http://localhost:8400/redirect", cfg.Identity.RedirectURI)
	assert.Equal(t, []string{"openid", "profile", "email", "offline_access"}, cfg.Identity.Scopes)
	assert.Equal(t, "azure", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Azure.Deployment)
	assert.True(t, cfg.Log.Redact)
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolate(t)
	file := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
identity:
  client_id: from-file
  authority: https://login.example.com/tenant
api:
  base_url: https://api.example.com
  timeout: 5s
server:
  allowed_origins: [https://a.example.com, https://b.example.com]
`), 0o600))
	t.Setenv("LEARNHUB_API_BASE_URL", "https://env.example.com")

	cfg, err := Load(file, nil)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Identity.ClientID)
	assert.Equal(t, "https://env.example.com", cfg.API.BaseURL, "env beats file")
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
}

func TestLoad_ProviderEnvFallbacks(t *testing.T) {
	isolate(t)
	t.Setenv("AZURE_CLIENT_ID", "azure-client")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://res.openai.azure.com")
	t.Setenv("AZURE_OPENAI_KEY", "k")
	t.Setenv("DEPLOYMENT_NAME", "gpt-4o")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "azure-client", cfg.Identity.ClientID)
	assert.Equal(t, "https://res.openai.azure.com", cfg.LLM.Azure.Endpoint)
	assert.Equal(t, "k", cfg.LLM.Azure.APIKey)
	assert.Equal(t, "gpt-4o", cfg.LLM.Azure.Deployment)
	require.NoError(t, cfg.LLM.Validate())
}

func TestLoad_ChangedFlagsWin(t *testing.T) {
	isolate(t)
	t.Setenv("LEARNHUB_SERVER_ADDR", ":9999")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("addr", ":3000", "")
	fs.String("api-url", "http://unused", "")
	require.NoError(t, fs.Parse([]string{"--addr", ":7000"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL, "unchanged flag must not override")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidateClient(t *testing.T) {
	isolate(t)
	cfg, err := Load("", nil)
	require.NoError(t, err)

	err = cfg.ValidateClient()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_id")
	assert.Contains(t, err.Error(), "authority")

	cfg.Identity.ClientID = "c"
	cfg.Identity.Authority = "https://login.example.com/tenant"
	assert.NoError(t, cfg.ValidateClient())
}
