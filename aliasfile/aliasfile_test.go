package aliasfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timo-reymann/poc-base-image-manager/aliasfile"
)

func TestWrite_and_Read_roundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	require.NoError(t, aliasfile.Write(dir, map[string]string{
		"9":   "9.1.50",
		"9.0": "9.0.200",
	}))

	got, err := aliasfile.Read(dir, "9")
	require.NoError(t, err)
	assert.Equal(t, "9.1.50", got)

	got, err = aliasfile.Read(dir, "9.0")
	require.NoError(t, err)
	assert.Equal(t, "9.0.200", got)
}

func TestWrite_content_is_exact_tag_string(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	require.NoError(t, aliasfile.Write(dir, map[string]string{
		"latest": "9.0.300",
	}))

	raw, err := os.ReadFile(filepath.Join(dir, "latest"))
	require.NoError(t, err)

	// No trailing newline, no structure: the literal
	// tag name only.
	assert.Equal(t, "9.0.300", string(raw))
}

func TestWrite_rejects_tag_directory_collision(
	t *testing.T,
) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(
		t, os.Mkdir(filepath.Join(dir, "9.0"), 0o750),
	)

	err := aliasfile.Write(dir, map[string]string{
		"9.0": "9.0.200",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "collides")
}

func TestForTag_finds_matching_aliases(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// Tag output directories live next to alias files
	// and must be skipped by the scan.
	require.NoError(
		t,
		os.Mkdir(filepath.Join(dir, "9.1.50"), 0o750),
	)

	require.NoError(t, aliasfile.Write(dir, map[string]string{
		"9":      "9.1.50",
		"9.0":    "9.0.200",
		"9.1":    "9.1.50",
		"stable": "9.0.200",
	}))

	got, err := aliasfile.ForTag(dir, "9.1.50")
	require.NoError(t, err)
	assert.Equal(t, []string{"9", "9.1"}, got)

	got, err = aliasfile.ForTag(dir, "9.0.200")
	require.NoError(t, err)
	assert.Equal(t, []string{"9.0", "stable"}, got)
}

func TestForTag_no_matches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, aliasfile.Write(dir, map[string]string{
		"9": "9.1.50",
	}))

	got, err := aliasfile.ForTag(dir, "1.0.0")

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRead_missing_alias(t *testing.T) {
	t.Parallel()

	_, err := aliasfile.Read(t.TempDir(), "missing")

	assert.Error(t, err)
}
