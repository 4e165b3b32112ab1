package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	t.Setenv("CFG_TEST_NAME", "  value ")
	t.Setenv("CFG_TEST_TTL", "15")
	t.Setenv("CFG_TEST_BAD_TTL", "soon")
	t.Setenv("CFG_TEST_LIST", "a, b,,c ")

	assert.Equal(t, "value", Get("CFG_TEST_NAME", "def"))
	assert.Equal(t, "def", Get("CFG_TEST_UNSET", "def"))
	assert.Equal(t, 15*time.Minute, Minutes("CFG_TEST_TTL", time.Hour))
	assert.Equal(t, 15*time.Hour, Hours("CFG_TEST_TTL", time.Minute))
	assert.Equal(t, time.Hour, Minutes("CFG_TEST_BAD_TTL", time.Hour))
	assert.Equal(t, []string{"a", "b", "c"}, List("CFG_TEST_LIST"))
}

func TestLoadEnvKeepsExistingVariables(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CFG_TEST_FROM_FILE=file\nCFG_TEST_SET=file\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("CFG_TEST_SET", "env")
	t.Setenv("CFG_TEST_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("CFG_TEST_FROM_FILE"))

	LoadEnv()
	assert.Equal(t, "file", os.Getenv("CFG_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("CFG_TEST_SET"))
}
