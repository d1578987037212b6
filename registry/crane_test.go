package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timo-reymann/poc-base-image-manager/aliasfile"
	"github.com/timo-reymann/poc-base-image-manager/registry"
)

const fakeDigest = "sha256:5711bcf54511ab2fef6e08d9c" +
	"9f9ae3f3a269e66834048465cc7502adb0d489b"

// fakeCrane writes an executable stub standing in for
// the crane binary. It answers "digest" with a fixed
// digest, records every invocation into a log file, and
// fails for refs containing "missing".
func fakeCrane(tb testing.TB) (string, string) {
	tb.Helper()

	dir := tb.TempDir()
	bin := filepath.Join(dir, "crane")
	logFile := filepath.Join(dir, "calls.log")

	script := `#!/bin/sh
echo "$@" >> ` + logFile + `
case "$*" in
  *missing*) echo "MANIFEST_UNKNOWN" >&2; exit 1 ;;
esac
if [ "$1" = "digest" ]; then
  echo ` + fakeDigest + `
fi
exit 0
`

	require.NoError(
		tb, os.WriteFile(bin, []byte(script), 0o700),
	)

	return bin, logFile
}

func readCalls(tb testing.TB, logFile string) string {
	tb.Helper()

	raw, err := os.ReadFile(logFile)
	require.NoError(tb, err)

	return string(raw)
}

func TestCrane_digest(t *testing.T) {
	t.Parallel()

	bin, _ := fakeCrane(t)
	cr := registry.Crane{Bin: bin}

	dig, err := cr.Digest(
		t.Context(), "localhost:5050/base:9.0.100",
	)

	require.NoError(t, err)
	assert.Equal(t, fakeDigest, dig.String())
}

func TestCrane_digest_not_found(t *testing.T) {
	t.Parallel()

	bin, _ := fakeCrane(t)
	cr := registry.Crane{Bin: bin}

	_, err := cr.Digest(
		t.Context(), "localhost:5050/base:missing",
	)

	var nf *registry.NotFoundError

	require.ErrorAs(t, err, &nf)
	assert.Equal(
		t, "localhost:5050/base:missing", nf.Ref,
	)
}

func TestCrane_login_without_credentials_is_noop(
	t *testing.T,
) {
	t.Parallel()

	bin, logFile := fakeCrane(t)
	cr := registry.Crane{Bin: bin}

	err := cr.Login(t.Context(), registry.Registry{
		URL: "localhost:5050",
	})

	require.NoError(t, err)
	_, statErr := os.Stat(logFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRetag_applies_all_aliases(t *testing.T) {
	t.Parallel()

	bin, logFile := fakeCrane(t)

	dist := t.TempDir()
	imageDir := filepath.Join(dist, "dotnet")
	require.NoError(t, os.MkdirAll(imageDir, 0o750))
	require.NoError(
		t,
		aliasfile.Write(imageDir, map[string]string{
			"9":   "9.0.200",
			"9.0": "9.0.200",
			"9.1": "9.1.50",
		}),
	)

	err := registry.Retag(
		t.Context(),
		registry.RetagOptions{
			DistDir: dist,
			Image:   "dotnet",
			Tag:     "9.0.200",
			Registry: registry.Registry{
				URL: "localhost:5050",
			},
			Crane: registry.Crane{Bin: bin},
		},
	)
	require.NoError(t, err)

	calls := readCalls(t, logFile)
	assert.Contains(
		t, calls,
		"digest localhost:5050/dotnet:9.0.200",
	)
	assert.Contains(
		t, calls,
		"tag localhost:5050/dotnet:9.0.200 9",
	)
	assert.Contains(
		t, calls,
		"tag localhost:5050/dotnet:9.0.200 9.0",
	)
	assert.NotContains(t, calls, "9.1.50")
}

func TestRetag_missing_remote_tag(t *testing.T) {
	t.Parallel()

	bin, _ := fakeCrane(t)

	dist := t.TempDir()
	imageDir := filepath.Join(dist, "dotnet")
	require.NoError(t, os.MkdirAll(imageDir, 0o750))

	err := registry.Retag(
		t.Context(),
		registry.RetagOptions{
			DistDir: dist,
			Image:   "dotnet",
			Tag:     "missing",
			Registry: registry.Registry{
				URL: "localhost:5050",
			},
			Crane: registry.Crane{Bin: bin},
		},
	)

	var nf *registry.NotFoundError

	assert.ErrorAs(t, err, &nf)
}
