package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "server:\n  port: 50051\ndatabase:\n  driver: memory\njwt:\n  secret: \"" + testSecret + "\"\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", writeConfig(t), "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	out, err := run(t, "token", "--user", "7", "--admin")
	require.NoError(t, err)

	claims, err := security.NewTokenManager(testSecret).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestReconcileCommand_Memory(t *testing.T) {
	out, err := run(t, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "ledger is consistent")
}

func TestMigrateCommand_RequiresPostgres(t *testing.T) {
	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "requires the postgres driver")
}

func TestDepositCommand_UnknownUser(t *testing.T) {
	_, err := run(t, "deposit", "--user", "42", "--amount", "100")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
