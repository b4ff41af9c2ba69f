package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFromMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  addr: ":9090"
annotators:
  generic:
    backend: openai
    timeout: 5s
google:
  project: my-project
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, int64(4<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, BackendOpenAI, cfg.Annotators.Generic.Backend)
	assert.Equal(t, 5*time.Second, cfg.Annotators.Generic.Timeout)
	assert.Equal(t, 256, cfg.Annotators.Generic.CacheSize)
	assert.Equal(t, BackendGazetteer, cfg.Annotators.Skill.Backend)
	assert.Equal(t, "my-project", cfg.Google.Project)
	assert.Equal(t, "us-central1", cfg.Google.Location)
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0600))

	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Google.Project = "round-trip"
	cfg.OpenAI.APIKey = "sk-secret"

	require.NoError(t, cfg.SaveTo(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-secret")

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "round-trip", loaded.Google.Project)
	assert.Equal(t, cfg.Annotators, loaded.Annotators)
	assert.Empty(t, loaded.OpenAI.APIKey)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "env-project")
	t.Setenv("GOOGLE_CLOUD_LOCATION", "europe-west4")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/creds.json")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("PORT", "3000")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.Equal(t, "env-project", cfg.Google.Project)
	assert.Equal(t, "europe-west4", cfg.Google.Location)
	assert.Equal(t, "/tmp/creds.json", cfg.Google.CredentialsPath)
	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	assert.Equal(t, ":3000", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	gazetteer := filepath.Join(t.TempDir(), "entities.yaml")
	require.NoError(t, os.WriteFile(gazetteer, []byte("entities: []"), 0600))

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "Vertex AI with project",
			mutate: func(c *Config) { c.Google.Project = "p" },
		},
		{
			name:    "Vertex AI without project",
			mutate:  func(c *Config) {},
			wantErr: "google.project is required",
		},
		{
			name: "OpenAI without key",
			mutate: func(c *Config) {
				c.Annotators.Generic.Backend = BackendOpenAI
			},
			wantErr: "OPENAI_API_KEY is required",
		},
		{
			name: "Generic gazetteer needs a path",
			mutate: func(c *Config) {
				c.Annotators.Generic.Backend = BackendGazetteer
			},
			wantErr: "annotators.generic.gazetteer_path is required",
		},
		{
			name: "Generic gazetteer with path",
			mutate: func(c *Config) {
				c.Annotators.Generic.Backend = BackendGazetteer
				c.Annotators.Generic.GazetteerPath = gazetteer
			},
		},
		{
			name: "Missing skill gazetteer file",
			mutate: func(c *Config) {
				c.Google.Project = "p"
				c.Annotators.Skill.GazetteerPath = filepath.Join(t.TempDir(), "missing.yaml")
			},
			wantErr: "skill gazetteer not found",
		},
		{
			name: "Unknown backend",
			mutate: func(c *Config) {
				c.Google.Project = "p"
				c.Annotators.Skill.Backend = "spacy"
			},
			wantErr: `annotators.skill.backend "spacy" is not supported`,
		},
		{
			name: "Negative timeout",
			mutate: func(c *Config) {
				c.Google.Project = "p"
				c.Annotators.Generic.Timeout = -time.Second
			},
			wantErr: "timeout must not be negative",
		},
		{
			name: "Empty address",
			mutate: func(c *Config) {
				c.Server.Addr = ""
			},
			wantErr: "server.addr is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "RESUME_MATCHER_DOTENV_TEST"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0600))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv(key))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
	assert.NoError(t, LoadDotEnv(""))
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "from-shell")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GOOGLE_CLOUD_PROJECT=from-file\n"), 0600))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-shell", os.Getenv("GOOGLE_CLOUD_PROJECT"))
}
