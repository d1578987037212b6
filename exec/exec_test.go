package exec_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timo-reymann/poc-base-image-manager/exec"
)

func TestEx_success(t *testing.T) {
	t.Parallel()

	out, err := exec.Ex(
		t.Context(), "", nil, "echo", "hello",
	)

	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestEx_with_dir(t *testing.T) {
	t.Parallel()

	out, err := exec.Ex(
		t.Context(), "/tmp", nil, "pwd",
	)

	require.NoError(t, err)
	assert.Contains(t, out, "/tmp")
}

func TestEx_with_env(t *testing.T) {
	t.Parallel()

	out, err := exec.Ex(
		t.Context(),
		"",
		[]string{"EX_TEST_VAR=set-by-test"},
		"sh", "-c", "echo $EX_TEST_VAR",
	)

	require.NoError(t, err)
	assert.Contains(t, out, "set-by-test")
}

func TestEx_failure(t *testing.T) {
	t.Parallel()

	_, err := exec.Ex(t.Context(), "", nil, "false")

	assert.Error(t, err)
}

func TestEx_canceled_context(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := exec.Ex(ctx, "", nil, "sleep", "10")

	assert.Error(t, err)
}
