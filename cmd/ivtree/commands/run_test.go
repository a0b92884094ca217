package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/ivtree/cmd/ivtree/commands"
	"github.com/Sumatoshi-tech/ivtree/internal/workload"
	"github.com/Sumatoshi-tech/ivtree/pkg/config"
)

const workloadsDir = "../../../examples/workloads"

func emptyConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ivtree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: error\n"), 0o600))

	return path
}

func execRun(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := commands.NewRunCommand()

	var out, errOut bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", emptyConfig(t)}, args...))

	err := cmd.Execute()

	return out.String(), err
}

func TestRunCommand_Passes(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"overlap.yaml", "big.yaml", "churn.yaml"} {
		out, err := execRun(t, "--no-color", filepath.Join(workloadsDir, name))
		require.NoError(t, err, name)

		assert.Contains(t, out, "PASS", name)
		assert.NotContains(t, out, "FAIL", name)
		assert.NotContains(t, out, "\x1b[", name)
	}
}

func TestRunCommand_EventsAndDomainOverride(t *testing.T) {
	t.Parallel()

	out, err := execRun(t, "--no-color", "--events", "--domain", "float", "--no-validate",
		filepath.Join(workloadsDir, "churn.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "EVENTS")
	assert.Contains(t, out, "Balanced(")
	assert.Contains(t, out, "PASS float:")
}

func TestRunCommand_FailingWorkload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fail.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - size: {}\n    expect: 1\n"), 0o600))

	out, err := execRun(t, "--no-color", path)
	require.ErrorIs(t, err, workload.ErrExpectation)
	assert.Contains(t, out, "FAIL step 0")
}

func TestRunCommand_InvalidDomain(t *testing.T) {
	t.Parallel()

	_, err := execRun(t, "--domain", "int8", filepath.Join(workloadsDir, "overlap.yaml"))
	require.ErrorIs(t, err, config.ErrInvalidDomain)
}

func TestRunCommand_SchemaError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - grow: {}\n"), 0o600))

	_, err := execRun(t, path)
	require.ErrorIs(t, err, workload.ErrSchema)
}

func TestRunCommand_MetricsEndpoint(t *testing.T) {
	t.Parallel()

	_, err := execRun(t, "--metrics-addr", "127.0.0.1:0", filepath.Join(workloadsDir, "overlap.yaml"))
	require.NoError(t, err)
}

func TestRunCommand_ColorFlagsExclusive(t *testing.T) {
	t.Parallel()

	_, err := execRun(t, "--color", "--no-color", filepath.Join(workloadsDir, "overlap.yaml"))
	require.Error(t, err)
}

func TestRunCommand_RequiresOneArg(t *testing.T) {
	t.Parallel()

	_, err := execRun(t)
	require.Error(t, err)
}
