package runner

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bctl/internal/errors"
)

func TestRunSuccess(t *testing.T) {
	r := New()

	res, err := r.Run(context.Background(), []string{"true"}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Empty(t, res.Stdout)
	assert.Empty(t, res.Stderr)
}

func TestRunCapturesStdout(t *testing.T) {
	r := New()

	res, err := r.Run(context.Background(), []string{"echo", "hello", "world"}, false)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRunStringSplitsOnWhitespace(t *testing.T) {
	r := New()

	res, err := r.RunString(context.Background(), "echo  a   b", false)
	require.NoError(t, err)
	assert.Equal(t, "a b\n", res.Stdout)
}

func TestRunNonZeroExitWithoutFailFast(t *testing.T) {
	r := New()

	res, err := r.Run(context.Background(), []string{"false"}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
}

func TestRunNonZeroExitWithFailFast(t *testing.T) {
	r := New()

	res, err := r.Run(context.Background(), []string{"false"}, true)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryExec))
	assert.Equal(t, 1, res.ExitCode)
}

func TestRunNonZeroExitLogsWhenLoggerSet(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := New(WithLogger(logger))

	_, err := r.Run(context.Background(), []string{"false"}, false)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "non-zero exit status")
	assert.Contains(t, buf.String(), "command=false")
}

func TestRunNonexistentExecutable(t *testing.T) {
	r := New()

	res, err := r.Run(context.Background(), []string{"definitely-not-a-real-binary-xyz"}, true)
	require.Error(t, err)
	assert.Equal(t, -1, res.ExitCode)
}

func TestRunEmptyCommand(t *testing.T) {
	r := New()

	_, err := r.Run(context.Background(), nil, false)
	require.Error(t, err)
}

func TestAssertExists(t *testing.T) {
	require.NoError(t, AssertExists("true"))

	err := AssertExists("definitely-not-a-real-binary-xyz")
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
	assert.True(t, errors.IsCategory(err, errors.CategoryExec))
}

func TestRunRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New()
	res, err := r.Run(ctx, []string{"sleep", "10"}, true)
	require.Error(t, err)
	assert.NotEqual(t, 0, res.ExitCode)
}
