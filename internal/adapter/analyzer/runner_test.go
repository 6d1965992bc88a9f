package analyzer

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests shell out via sh")
	}
}

func TestRun_CapturesOutput(t *testing.T) {
	requireShell(t)
	runner := NewRunner()

	result, err := runner.Run(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", "echo out; echo err >&2"},
		Dir:     t.TempDir(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
	assert.Positive(t, result.Duration)
}

func TestRun_NonZeroExitIsNotAnError(t *testing.T) {
	requireShell(t)
	runner := NewRunner()

	result, err := runner.Run(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", "echo partial; exit 3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "partial\n", result.Stdout)
}

func TestRun_MissingCommand(t *testing.T) {
	runner := NewRunner()

	_, err := runner.Run(context.Background(), Spec{})
	assert.Error(t, err)

	_, err = runner.Run(context.Background(), Spec{Command: "definitely-not-a-real-binary-xyz"})
	assert.Error(t, err)
}

func TestRun_ExtraEnv(t *testing.T) {
	requireShell(t)
	runner := NewRunner()

	result, err := runner.Run(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", "printf '%s' \"$MIGREP_TEST_VALUE\""},
		Env:     []string{"MIGREP_TEST_VALUE=42"},
	})
	require.NoError(t, err)
	assert.Equal(t, "42", result.Stdout)
}
