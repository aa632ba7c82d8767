package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoadAppliesDefaultsWhenEnvAndOverridesAreEmpty(t *testing.T) {
	cfg, err := Load(envMap(nil), Overrides{})
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.DatabasePath)
	assert.Equal(t, DefaultDatabaseWaitTimeout, cfg.DatabaseWaitTimeout)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Empty(t, cfg.DeprecatedPathNotice)
}

func TestLoadReadsEnvironmentVariables(t *testing.T) {
	env := envMap(map[string]string{
		"PLINKO_PORT":             "9090",
		"PLINKO_DATABASE_PATH":    "/data/custom.bin",
		"PLINKO_DATABASE_TIMEOUT": "30",
		"PLINKO_LOG_LEVEL":        "DEBUG",
	})

	cfg, err := Load(env, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/data/custom.bin", cfg.DatabasePath)
	assert.Equal(t, 30*time.Second, cfg.DatabaseWaitTimeout)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestDeprecatedDatabasePathEnvVarIsUsedWithNotice(t *testing.T) {
	env := envMap(map[string]string{
		deprecatedDatabasePathEnv: "/legacy/path.bin",
	})

	cfg, err := Load(env, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "/legacy/path.bin", cfg.DatabasePath)
	assert.NotEmpty(t, cfg.DeprecatedPathNotice)
}

func TestCurrentDatabasePathEnvVarWinsOverDeprecated(t *testing.T) {
	env := envMap(map[string]string{
		"PLINKO_DATABASE_PATH":   "/current/path.bin",
		deprecatedDatabasePathEnv: "/legacy/path.bin",
	})

	cfg, err := Load(env, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "/current/path.bin", cfg.DatabasePath)
	assert.Empty(t, cfg.DeprecatedPathNotice)
}

func TestFlagOverridesWinOverEnvironment(t *testing.T) {
	env := envMap(map[string]string{
		"PLINKO_PORT":      "9090",
		"PLINKO_LOG_LEVEL": "DEBUG",
	})

	overridePort := 7070
	overrideLevel := "ERROR"
	cfg, err := Load(env, Overrides{Port: &overridePort, LogLevel: &overrideLevel})
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "ERROR", cfg.LogLevel)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	bad := -1
	_, err := Load(envMap(nil), Overrides{Port: &bad})
	assert.Error(t, err)

	tooHigh := 70000
	_, err = Load(envMap(nil), Overrides{Port: &tooHigh})
	assert.Error(t, err)
}

func TestLoadRejectsEmptyDatabasePath(t *testing.T) {
	empty := ""
	_, err := Load(envMap(nil), Overrides{DatabasePath: &empty})
	assert.Error(t, err)
}

func TestLoadRejectsNegativeTimeout(t *testing.T) {
	negative := -5 * time.Second
	_, err := Load(envMap(nil), Overrides{DatabaseWaitTimeout: &negative})
	assert.Error(t, err)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	bogus := "VERBOSE"
	_, err := Load(envMap(nil), Overrides{LogLevel: &bogus})
	assert.Error(t, err)
}

func TestListenAddressBindsAllInterfaces(t *testing.T) {
	cfg, err := Load(envMap(nil), Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddress())
}
