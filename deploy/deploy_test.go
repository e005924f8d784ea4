package deploy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewManifest(t *testing.T) {
	m := NewManifest(DefaultOptions())

	assert.Equal(t, 2, m.Version)
	assert.Equal(t, "mini-network-chat", m.Name)
	require.Len(t, m.Routes, 2)
	assert.Equal(t, Route{Src: "/api/(.*)", Dest: "/api/$1"}, m.Routes[0])
	assert.Equal(t, Route{Src: "/(.*)", Dest: "/public/$1"}, m.Routes[1])
	assert.Equal(t, 30, m.Functions["api/**"].MaxDuration)
	assert.Equal(t, map[string]string{"APP_ENV": "production"}, m.Env)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr string
	}{
		{"defaults", func(*Options) {}, ""},
		{"sqlite yaml", func(o *Options) { o.Backend = "sqlite"; o.Format = FormatYAML }, ""},
		{"empty name", func(o *Options) { o.Name = "" }, "name is required"},
		{"bad backend", func(o *Options) { o.Backend = "mongo" }, "unknown backend"},
		{"bad format", func(o *Options) { o.Format = "toml" }, "unknown format"},
		{"bad duration", func(o *Options) { o.MaxDuration = 0 }, "max duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDependencyManifest(t *testing.T) {
	opts := DefaultOptions()

	redisDeps := NewDependencyManifest(opts)
	assert.Equal(t, map[string]string{"github.com/redis/go-redis/v9": "v9.17.1"}, redisDeps.Dependencies)

	opts.Backend = "sqlite"
	assert.Equal(t, map[string]string{"gorm.io/driver/sqlite": "v1.5.7"}, NewDependencyManifest(opts).Dependencies)

	opts.Backend = "memory"
	memDeps := NewDependencyManifest(opts)
	assert.Empty(t, memDeps.Dependencies)

	data, err := json.Marshal(memDeps)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"dependencies":{}`)
}

func TestRenderDeterministic(t *testing.T) {
	first, err := Render(DefaultOptions())
	require.NoError(t, err)
	second, err := Render(DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := Generate(dir, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, paths, 3)

	data, err := os.ReadFile(filepath.Join(dir, ManifestJSONFile))
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, NewManifest(DefaultOptions()), m)
	assert.True(t, strings.HasSuffix(string(data), "\n"))

	_, err = os.Stat(filepath.Join(dir, DependenciesFile))
	assert.NoError(t, err)

	docs, err := os.ReadFile(filepath.Join(dir, DocsFile))
	require.NoError(t, err)
	assert.Contains(t, string(docs), "# mini-network-chat deployment")
	assert.Contains(t, string(docs), "`/api/messages?since=ID`")
	assert.Contains(t, string(docs), "REDIS_ADDR")
	assert.Contains(t, string(docs), "github.com/redis/go-redis/v9")
	assert.Contains(t, string(docs), "Only served when ADMIN_CLEAR_ENABLED is true")
}

func TestEnvVarsMatchConfiguration(t *testing.T) {
	names := func(backend string) []string {
		var out []string
		for _, v := range EnvVars(backend) {
			out = append(out, v.Name)
		}
		return out
	}

	common := []string{
		"APP_ENV", "HTTP_PORT", "STORE_BACKEND", "MAX_MESSAGES", "REQUEST_TIMEOUT",
		"RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "BOT_ENABLED", "BOT_PROBABILITY",
		"BOT_DELAY", "STATIC_DIR", "ADMIN_CLEAR_ENABLED",
	}
	assert.ElementsMatch(t, common, names("memory"))
	assert.ElementsMatch(t, append(common, "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_KEY_PREFIX"), names("redis"))
	assert.ElementsMatch(t, append(common, "DB_PATH"), names("sqlite"))
}

func TestGenerateYAML(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.Format = FormatYAML
	opts.Backend = "sqlite"

	_, err := Generate(dir, opts)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ManifestYAMLFile))
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, NewManifest(opts), m)

	docs, err := os.ReadFile(filepath.Join(dir, DocsFile))
	require.NoError(t, err)
	assert.Contains(t, string(docs), "DB_PATH")
	assert.NotContains(t, string(docs), "REDIS_ADDR")
}

func TestGenerateInvalidOptions(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.Backend = "nope"

	_, err := Generate(dir, opts)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
