package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

const (
	// SettingsFile is the workspace-level settings file
	// holding registry definitions.
	SettingsFile = ".image-manager.yml"

	// DefaultRegistry is used when nothing is
	// configured.
	DefaultRegistry = "localhost:5050"
)

// Registry describes a single container registry.
type Registry struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Default  bool   `yaml:"default"`
}

// Auth returns the credentials when both are set.
func (r Registry) Auth() (string, string, bool) {
	if r.Username == "" || r.Password == "" {
		return "", "", false
	}

	return r.Username, r.Password, true
}

// Settings is the parsed .image-manager.yml. The legacy
// single-registry form is kept readable next to the
// multi-registry list.
type Settings struct {
	Registries []Registry `yaml:"registries"`
	Registry   *Registry  `yaml:"registry"`
}

// LoadSettings reads .image-manager.yml from dir. A
// missing or empty file yields empty settings, never an
// error. A .env file in the same directory is loaded
// first so that ${VAR} references in the settings can
// point at it.
func LoadSettings(dir string) (*Settings, error) {
	const errCtx = "loading registry settings"

	// Missing .env is fine; settings may reference
	// variables from the process environment instead.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	raw, err := os.ReadFile( //nolint:gosec // settings path is derived from the workspace dir
		filepath.Join(dir, SettingsFile),
	)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}

		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	var st Settings

	if err := yaml.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return &st, nil
}

// All returns the configured registries with environment
// references expanded. Entries whose URL does not expand
// are skipped. With no multi-registry list the legacy
// single-registry form is returned (always marked
// default), falling back to DefaultRegistry.
func (s *Settings) All() []Registry {
	if len(s.Registries) > 0 {
		result := make([]Registry, 0, len(s.Registries))

		for _, reg := range s.Registries {
			url, ok := ExpandEnv(reg.URL)
			if !ok || url == "" {
				continue
			}

			username, _ := ExpandEnv(reg.Username)
			password, _ := ExpandEnv(reg.Password)

			result = append(result, Registry{
				URL:      url,
				Username: username,
				Password: password,
				Default:  reg.Default,
			})
		}

		return result
	}

	legacy := Registry{URL: DefaultRegistry, Default: true}

	if s.Registry != nil {
		if url, ok := ExpandEnv(s.Registry.URL); ok && url != "" {
			legacy.URL = url
		}

		legacy.Username, _ = ExpandEnv(s.Registry.Username)
		legacy.Password, _ = ExpandEnv(s.Registry.Password)
	}

	return []Registry{legacy}
}

// Push returns the registry images are pushed to: the
// one marked default, else the first configured, else
// the localhost fallback.
func (s *Settings) Push() Registry {
	regs := s.All()

	if len(regs) == 0 {
		return Registry{
			URL:     DefaultRegistry,
			Default: true,
		}
	}

	for _, reg := range regs {
		if reg.Default {
			return reg
		}
	}

	return regs[0]
}

// AuthFor returns credentials for a registry URL or
// image reference, matched by URL prefix (e.g.
// "ghcr.io" matches "ghcr.io/org/image").
func (s *Settings) AuthFor(
	ref string,
) (string, string, bool) {
	host, _, _ := strings.Cut(ref, "/")

	for _, reg := range s.All() {
		if strings.HasPrefix(ref, reg.URL) ||
			strings.HasPrefix(reg.URL, host) {
			return reg.Auth()
		}
	}

	return "", "", false
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandEnv expands ${VAR} references in value against
// the process environment. Values without references
// pass through unchanged. When any referenced variable
// is undefined the expansion fails (ok is false), so a
// half-expanded credential never leaks into use.
func ExpandEnv(value string) (string, bool) {
	undefined := false

	expanded := envPattern.ReplaceAllStringFunc(
		value,
		func(match string) string {
			name := match[2 : len(match)-1]

			val, ok := os.LookupEnv(name)
			if !ok {
				undefined = true

				return ""
			}

			return val
		},
	)

	if undefined {
		return "", false
	}

	return expanded, true
}
