package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timo-reymann/poc-base-image-manager/config"
)

// writeConfig writes an image.yml into a fresh directory
// under dir and returns its path.
func writeConfig(
	tb testing.TB,
	dir string,
	name string,
	content string,
) string {
	tb.Helper()

	imgDir := filepath.Join(dir, name)
	require.NoError(tb, os.MkdirAll(imgDir, 0o750))

	pa := filepath.Join(imgDir, config.FileName)
	require.NoError(
		tb, os.WriteFile(pa, []byte(content), 0o600),
	)

	return pa
}

func TestLoad_full_config(t *testing.T) {
	t.Parallel()

	pa := writeConfig(t, t.TempDir(), "python", `
name: python
versions:
  uv: "0.8.22"
variables:
  ENV: production
tags:
  - name: "3.13.7"
    versions:
      python: "3.13.7"
  - name: "3.13.6"
variants:
  - name: browser
    tag_suffix: "-browser"
    versions:
      chromium: "120.0"
aliases:
  latest: "3.13.7"
`)

	cfg, err := config.Load(pa)
	require.NoError(t, err)

	assert.Equal(t, "python", cfg.Name)
	assert.Equal(t, filepath.Dir(pa), cfg.Dir)
	assert.Equal(t, "0.8.22", cfg.Versions["uv"])
	require.Len(t, cfg.Tags, 2)
	assert.Equal(t, "3.13.7", cfg.Tags[0].Name)
	assert.Equal(
		t, "3.13.7", cfg.Tags[0].Versions["python"],
	)
	require.Len(t, cfg.Variants, 1)
	assert.Equal(t, "-browser", cfg.Variants[0].TagSuffix)
	assert.Equal(
		t, map[string]string{"latest": "3.13.7"},
		cfg.Aliases,
	)
}

func TestLoad_name_defaults_to_directory(t *testing.T) {
	t.Parallel()

	pa := writeConfig(t, t.TempDir(), "dotnet", `
tags:
  - name: "9.0.300"
`)

	cfg, err := config.Load(pa)
	require.NoError(t, err)

	assert.Equal(t, "dotnet", cfg.Name)
}

func TestLoad_missing_file(t *testing.T) {
	t.Parallel()

	_, err := config.Load(
		filepath.Join(t.TempDir(), "image.yml"),
	)

	assert.Error(t, err)
}

func TestLoad_rejects_missing_tags(t *testing.T) {
	t.Parallel()

	pa := writeConfig(t, t.TempDir(), "base", `
name: base
`)

	_, err := config.Load(pa)

	var verr *config.ValidationError

	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "tags", verr.Field)
}

func TestLoad_rejects_duplicate_tag_names(t *testing.T) {
	t.Parallel()

	pa := writeConfig(t, t.TempDir(), "base", `
name: base
tags:
  - name: "1.0.0"
  - name: "1.0.0"
`)

	_, err := config.Load(pa)

	var verr *config.ValidationError

	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "duplicate tag name")
}

func TestLoad_rejects_variant_without_suffix(t *testing.T) {
	t.Parallel()

	pa := writeConfig(t, t.TempDir(), "base", `
name: base
tags:
  - name: "1.0.0"
variants:
  - name: slim
`)

	_, err := config.Load(pa)

	var verr *config.ValidationError

	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Field, "tag_suffix")
}

func TestValidate_in_memory_config(t *testing.T) {
	t.Parallel()

	cfg := &config.ImageConfig{
		Name: "base",
		Tags: []config.TagConfig{{Name: "1.0.0"}},
	}

	assert.NoError(t, cfg.Validate(""))
}

func TestDiscover_finds_nested_configs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	writeConfig(t, root, "base", `
name: base
tags:
  - name: "2025.9"
`)
	writeConfig(t, filepath.Join(root, "lang"), "python", `
name: python
tags:
  - name: "3.13.7"
`)

	configs, err := config.Discover(root)
	require.NoError(t, err)

	require.Len(t, configs, 2)
	assert.Equal(t, "base", configs[0].Name)
	assert.Equal(t, "python", configs[1].Name)
}

func TestDiscover_propagates_invalid_config(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "broken", `
name: broken
`)

	_, err := config.Discover(root)

	var verr *config.ValidationError

	assert.True(t, errors.As(err, &verr))
}
