package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_URL", "sqlite://"+filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	cmd := NewRootCmd()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["serve"])
	require.True(t, names["migrate"])
	require.True(t, names["sweep"])
}

func TestMigrateThenSweep(t *testing.T) {
	setEnv(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)

	out, err := run(t, "sweep")
	require.NoError(t, err)
	require.Contains(t, out, "completed 0 appointments")
}

func TestMissingConfigFails(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := run(t, "migrate")
	require.ErrorContains(t, err, "DB_URL")
}
