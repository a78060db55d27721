package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/revenue-middleware/pkg/auth"
)

const testConfig = `
gateway:
  url: "dns:///revenue.internal:443"
limits:
  token:
    min: "1"
    max: "1000000"
  chain:
    min: "0.1"
    max: "1000"
auth:
  issuer: "revenue-test"
  secret_env: "REVENUE_CMD_TEST_SECRET"
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("REVENUE_CMD_TEST_SECRET", "cmd-secret")
	path := writeConfig(t)

	out, err := execute(t, "token", "12", "--config", path, "--ttl", "1h")
	require.NoError(t, err)

	claims, err := auth.NewJWTValidator([]byte("cmd-secret"), "revenue-test", 0).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.Account)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenCommand_Errors(t *testing.T) {
	path := writeConfig(t)

	t.Setenv("REVENUE_CMD_TEST_SECRET", "")
	_, err := execute(t, "token", "12", "--config", path)
	assert.ErrorContains(t, err, "REVENUE_CMD_TEST_SECRET")

	t.Setenv("REVENUE_CMD_TEST_SECRET", "cmd-secret")
	_, err = execute(t, "token", "twelve", "--config", path)
	assert.ErrorContains(t, err, "invalid account")

	_, err = execute(t, "token", "12", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "load configuration")
}

func TestMigrateCommand_Validation(t *testing.T) {
	path := writeConfig(t)

	_, err := execute(t, "migrate", "sideways", "--config", path)
	assert.Error(t, err)

	_, err = execute(t, "migrate", "up", "--config", path)
	assert.ErrorContains(t, err, "no database configured")
}
