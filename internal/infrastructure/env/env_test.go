package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestLoad_BaseThenOverlay(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APP_ENV", "prod")
	t.Setenv("CHECKIN_ENV_TEST_A", "")
	t.Setenv("CHECKIN_ENV_TEST_B", "")
	os.Unsetenv("CHECKIN_ENV_TEST_A")
	os.Unsetenv("CHECKIN_ENV_TEST_B")

	write(t, filepath.Join(dir, ".env"), "CHECKIN_ENV_TEST_A=base\nCHECKIN_ENV_TEST_B=base\n")
	write(t, filepath.Join(dir, ".env.prod"), "CHECKIN_ENV_TEST_B=prod\n")

	res, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "prod", res.AppEnv)
	assert.Len(t, res.Loaded, 2)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, "base", os.Getenv("CHECKIN_ENV_TEST_A"))
	assert.Equal(t, "prod", os.Getenv("CHECKIN_ENV_TEST_B"))
}

func TestLoad_BaseDoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APP_ENV", "")
	t.Setenv("CHECKIN_ENV_TEST_C", "from-shell")

	write(t, filepath.Join(dir, ".env"), "CHECKIN_ENV_TEST_C=from-file\n")

	res, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "dev", res.AppEnv)
	assert.Equal(t, "from-shell", os.Getenv("CHECKIN_ENV_TEST_C"))
	assert.Equal(t, []string{filepath.Join(dir, ".env.dev")}, res.Skipped)
}

func TestLoad_NoFiles(t *testing.T) {
	t.Setenv("APP_ENV", "ci")

	res, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, res.Loaded)
	assert.Len(t, res.Skipped, 2)
}
