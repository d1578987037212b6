package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timo-reymann/poc-base-image-manager/config"
	"github.com/timo-reymann/poc-base-image-manager/resolve"
)

func TestVariantTemplate_name(t *testing.T) {
	t.Parallel()

	assert.Equal(
		t,
		"Dockerfile.browser.tmpl",
		resolve.VariantTemplate("browser"),
	)
}

func TestResolve_explicit_template_wins(t *testing.T) {
	t.Parallel()

	// Both the explicit identifier and the conventions
	// exist; the explicit one must win.
	loc := resolve.MapLocator{
		"Dockerfile.custom.tmpl": true,
		"Dockerfile.tmpl":        true,
	}

	img, err := resolve.NewResolver(loc).Resolve(
		&config.ImageConfig{
			Name: "base",
			Tags: []config.TagConfig{{
				Name:     "1.0.0",
				Template: "Dockerfile.custom.tmpl",
			}},
		},
	)

	require.NoError(t, err)
	assert.Equal(
		t,
		"Dockerfile.custom.tmpl",
		img.Tags[0].Template,
	)
}

func TestResolve_missing_explicit_template_fails(
	t *testing.T,
) {
	t.Parallel()

	// The default convention would resolve, but an
	// explicit identifier is verbatim: if it does not
	// exist resolution fails.
	loc := resolve.MapLocator{"Dockerfile.tmpl": true}

	_, err := resolve.NewResolver(loc).Resolve(
		&config.ImageConfig{
			Name: "base",
			Tags: []config.TagConfig{{
				Name:     "1.0.0",
				Template: "Dockerfile.missing.tmpl",
			}},
		},
	)

	var tnf *resolve.TemplateNotFoundError

	require.ErrorAs(t, err, &tnf)
	assert.Equal(t, "base", tnf.Image)
	assert.Equal(t, "1.0.0", tnf.Tag)
	assert.Equal(
		t,
		[]string{"Dockerfile.missing.tmpl"},
		tnf.Tried,
	)
}

func TestResolve_image_level_template_cascades(
	t *testing.T,
) {
	t.Parallel()

	loc := resolve.MapLocator{
		"Dockerfile.shared.tmpl": true,
	}

	img, err := resolve.NewResolver(loc).Resolve(
		&config.ImageConfig{
			Name:     "base",
			Template: "Dockerfile.shared.tmpl",
			Tags: []config.TagConfig{
				{Name: "1.0.0"},
			},
		},
	)

	require.NoError(t, err)
	assert.Equal(
		t,
		"Dockerfile.shared.tmpl",
		img.Tags[0].Template,
	)
}

func TestResolve_variant_convention_probed_first(
	t *testing.T,
) {
	t.Parallel()

	loc := resolve.MapLocator{
		"Dockerfile.tmpl":         true,
		"Dockerfile.browser.tmpl": true,
	}

	img, err := resolve.NewResolver(loc).Resolve(
		&config.ImageConfig{
			Name: "python",
			Tags: []config.TagConfig{
				{Name: "3.13.7"},
			},
			Variants: []config.VariantConfig{{
				Name:      "browser",
				TagSuffix: "-browser",
			}},
		},
	)

	require.NoError(t, err)
	assert.Equal(
		t,
		"Dockerfile.browser.tmpl",
		img.Variants[0].Tags[0].Template,
	)
}

func TestResolve_variant_falls_back_to_default(
	t *testing.T,
) {
	t.Parallel()

	// No variant-specific template exists; the default
	// convention is not an error yet.
	loc := resolve.MapLocator{"Dockerfile.tmpl": true}

	img, err := resolve.NewResolver(loc).Resolve(
		&config.ImageConfig{
			Name: "python",
			Tags: []config.TagConfig{
				{Name: "3.13.7"},
			},
			Variants: []config.VariantConfig{{
				Name:      "browser",
				TagSuffix: "-browser",
			}},
		},
	)

	require.NoError(t, err)
	assert.Equal(
		t,
		"Dockerfile.tmpl",
		img.Variants[0].Tags[0].Template,
	)
}

func TestResolve_no_template_at_all(t *testing.T) {
	t.Parallel()

	_, err := resolve.NewResolver(
		resolve.MapLocator{},
	).Resolve(&config.ImageConfig{
		Name: "python",
		Tags: []config.TagConfig{{Name: "3.13.7"}},
	})

	var tnf *resolve.TemplateNotFoundError

	require.ErrorAs(t, err, &tnf)
	assert.Equal(
		t, []string{"Dockerfile.tmpl"}, tnf.Tried,
	)
}

func TestResolve_variant_error_carries_context(
	t *testing.T,
) {
	t.Parallel()

	// Base tags resolve, the variant's explicit
	// template does not exist.
	loc := resolve.MapLocator{"Dockerfile.tmpl": true}

	_, err := resolve.NewResolver(loc).Resolve(
		&config.ImageConfig{
			Name: "python",
			Tags: []config.TagConfig{
				{Name: "3.13.7"},
			},
			Variants: []config.VariantConfig{{
				Name:      "browser",
				TagSuffix: "-browser",
				Template:  "Dockerfile.gone.tmpl",
			}},
		},
	)

	var tnf *resolve.TemplateNotFoundError

	require.ErrorAs(t, err, &tnf)
	assert.Equal(t, "python", tnf.Image)
	assert.Equal(t, "browser", tnf.Variant)
	assert.Equal(t, "3.13.7-browser", tnf.Tag)
}
