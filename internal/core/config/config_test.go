package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "1.0.0", cfg.Calculation.DefaultVersion)
	require.Equal(t, "", cfg.Calculation.VersionsDir)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Empty(t, cfg.VersionLoading.Versions)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	versionsDir := filepath.Join(dir, "versions")
	require.NoError(t, os.MkdirAll(versionsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(versionsDir, "v1_1_0.yaml"),
		[]byte("version: \"1.1.0\"\ndescription: \"test\"\n"), 0o644))

	configPath := filepath.Join(dir, "bravo.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"calculation:\n  versions_dir: "+versionsDir+"\n  default_version: \"1.1.0\"\nlogging:\n  level: debug\n",
	), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.Equal(t, "1.1.0", cfg.Calculation.DefaultVersion)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Len(t, cfg.VersionLoading.Versions, 1)
	require.Equal(t, "1.1.0", cfg.VersionLoading.Versions[0].Version)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BRAVO_LOGGING__LEVEL", "warn")
	t.Setenv("BRAVO_CALCULATION__DEFAULT_VERSION", "2.0.0")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Logging.Level)
	require.Equal(t, "2.0.0", cfg.Calculation.DefaultVersion)
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("BRAVO_LOGGING__LEVEL", "loud")
	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "logging.level")
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadBadVersionFile(t *testing.T) {
	dir := t.TempDir()
	versionsDir := filepath.Join(dir, "versions")
	require.NoError(t, os.MkdirAll(versionsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(versionsDir, "bad.yaml"),
		[]byte("version: \"9.0.0\"\nrounding_rules:\n  - name: r\n    policy: mystery\n"), 0o644))

	t.Setenv("BRAVO_CALCULATION__VERSIONS_DIR", versionsDir)
	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "calculation versions")
}
