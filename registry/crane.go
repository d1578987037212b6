package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/timo-reymann/poc-base-image-manager/exec"
)

// Crane drives the crane CLI for remote registry
// operations. The zero value uses "crane" from PATH.
type Crane struct {
	// Bin overrides the crane binary name or path.
	Bin string
}

// NotFoundError reports a reference that could not be
// reached in the remote registry.
type NotFoundError struct {
	Ref string
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf(
		"tag %s not reachable in registry: %v",
		e.Ref, e.Err,
	)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

func (c Crane) bin() string {
	if c.Bin != "" {
		return c.Bin
	}

	return "crane"
}

// Login authenticates crane against a registry when
// credentials are configured. Without credentials it is
// a no-op.
func (c Crane) Login(
	ctx context.Context,
	reg Registry,
) error {
	const errCtx = "authenticating registry"

	username, password, ok := reg.Auth()
	if !ok {
		return nil
	}

	_, err := exec.Ex(
		ctx, "", nil, c.bin(),
		"auth", "login", reg.URL,
		"-u", username,
		"-p", password,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Digest confirms a reference exists by looking up its
// remote manifest digest. An unreachable or missing
// reference yields a *NotFoundError.
func (c Crane) Digest(
	ctx context.Context,
	ref string,
) (digest.Digest, error) {
	const errCtx = "looking up remote digest"

	out, err := exec.Ex(
		ctx, "", nil, c.bin(), "digest", ref,
	)
	if err != nil {
		return "", &NotFoundError{Ref: ref, Err: err}
	}

	dig, err := digest.Parse(strings.TrimSpace(out))
	if err != nil {
		return "", fmt.Errorf(
			"%s: unexpected digest %q for %s: %w",
			errCtx, strings.TrimSpace(out), ref, err,
		)
	}

	return dig, nil
}

// Tag creates an additional tag for an existing remote
// reference without re-pushing any layers.
func (c Crane) Tag(
	ctx context.Context,
	ref string,
	newTag string,
) error {
	const errCtx = "tagging remote image"

	_, err := exec.Ex(
		ctx, "", nil, c.bin(), "tag", ref, newTag,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
