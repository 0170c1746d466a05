package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := `build:
  dirs: [/epics, /opt/epics]
  clone_dir: /tmp/modules
  clone: false
gitlab:
  url: https://gitlab.example.org
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/epics", "/opt/epics"}, cfg.Build.Dirs)
	assert.Equal(t, "/tmp/modules", cfg.Build.CloneDir)
	assert.False(t, cfg.Build.Clone)
	assert.True(t, cfg.Build.CreateLocal, "unset keys keep defaults")
	assert.Equal(t, "https://gitlab.example.org", cfg.GitLab.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_SearchPath(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	dir := filepath.Join(configHome, AppName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "e3spec.yaml"), []byte("build:\n  clone_dir: found\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "found", cfg.Build.CloneDir)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("E3SPEC_GITLAB_TOKEN", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GitLab.Token)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
