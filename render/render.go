package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/timo-reymann/poc-base-image-manager/resolve"
)

// TestConfigTemplate is the conventional identifier of
// the per-image test configuration template.
const TestConfigTemplate = "test.yml.tmpl"

const (
	startTag = "{{"
	endTag   = "}}"
)

// Context carries everything one render pass needs: the
// resolved image, the tag being rendered, the owning
// variant (nil for base tags), whether the image
// directory has a rootfs/ subtree, and the references
// available to named base_image placeholders.
type Context struct {
	Image     *resolve.Image
	Tag       resolve.Tag
	Variant   *resolve.Variant
	HasRootfs bool

	// BaseImages maps base-image names to the full
	// references substituted for base_image:<name>
	// placeholders.
	BaseImages map[string]string
}

// Dockerfile renders the build-instruction file for the
// context's tag. The template is looked up relative to
// the image directory under the tag's resolved template
// identifier. When the image has a rootfs and the tag
// has rootfs copying enabled, a COPY instruction is
// injected after the final FROM line.
func (ctx Context) Dockerfile() (string, error) {
	const errCtx = "rendering dockerfile"

	tplPath := filepath.Join(
		ctx.Image.Dir, ctx.Tag.Template,
	)

	content, err := os.ReadFile(tplPath) //nolint:gosec // template path comes from the resolved model
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	rendered := fasttemplate.ExecuteStringStd(
		string(content), startTag, endTag, ctx.values(),
	)

	if ctx.HasRootfs && ctx.Tag.RootfsCopy {
		rendered = InjectRootfsCopy(
			rendered, ctx.Tag.RootfsUser,
		)
	}

	return rendered, nil
}

// TestConfig renders the test-configuration file for the
// context's tag from the conventional test.yml.tmpl in
// the image directory. A missing template surfaces as an
// fs.ErrNotExist-wrapped error so callers can skip it.
func (ctx Context) TestConfig() (string, error) {
	const errCtx = "rendering test config"

	tplPath := filepath.Join(
		ctx.Image.Dir, TestConfigTemplate,
	)

	content, err := os.ReadFile(tplPath) //nolint:gosec // template path comes from the resolved model
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return fasttemplate.ExecuteStringStd(
		string(content), startTag, endTag, ctx.values(),
	), nil
}

// values builds the substitution context. Versions are
// exposed as "versions.NAME"; variables both bare and as
// "variables.NAME". Unknown placeholders are preserved
// as-is by the Std executors.
func (ctx Context) values() map[string]interface{} {
	vals := make(map[string]interface{})

	for key, val := range ctx.Tag.Versions {
		vals["versions."+key] = val
	}

	for key, val := range ctx.Tag.Variables {
		vals[key] = val
		vals["variables."+key] = val
	}

	for name, ref := range ctx.BaseImages {
		vals[baseImageKey+name] = ref
	}

	vals["image"] = ctx.Image.Name
	vals["tag"] = ctx.Tag.Name
	vals["full_qualified_image_name"] = ctx.Image.Name +
		":" + ctx.Tag.Name

	switch {
	case ctx.Variant != nil:
		// A variant layer builds FROM its own image at
		// the un-suffixed base tag.
		baseTag := strings.TrimSuffix(
			ctx.Tag.Name, ctx.Variant.Suffix,
		)
		vals["variant"] = ctx.Variant.Name
		vals["base_image"] = ctx.Image.Name + ":" + baseTag
	case ctx.Image.Extends != "":
		vals["base_image"] = ctx.Image.Extends
	}

	return vals
}

// InjectRootfsCopy inserts a chown'd rootfs COPY
// instruction after the last FROM line of a rendered
// dockerfile. With no FROM line the instruction is
// appended.
func InjectRootfsCopy(
	dockerfile string,
	user string,
) string {
	copyLine := fmt.Sprintf(
		"COPY --chown=%s rootfs/ /", user,
	)

	lines := strings.Split(dockerfile, "\n")

	lastFrom := -1

	for idx, line := range lines {
		if strings.HasPrefix(
			strings.TrimSpace(line), "FROM ",
		) {
			lastFrom = idx
		}
	}

	if lastFrom < 0 {
		return dockerfile + "\n" + copyLine + "\n"
	}

	result := make([]string, 0, len(lines)+1)
	result = append(result, lines[:lastFrom+1]...)
	result = append(result, copyLine)
	result = append(result, lines[lastFrom+1:]...)

	return strings.Join(result, "\n")
}
