// Package sled is the stub alternative engine capability. spec.md §1 names
// "sled" as a selectable engine.Kind but explicitly excludes implementing
// an embedded-store engine's internals as a non-goal; this package exists
// only so --engine=sled is a recognized, well-typed choice that fails
// loudly rather than silently falling back to the native engine.
package sled

import (
	"context"
	stdErrors "errors"
	"os"
	"path/filepath"

	kverrors "github.com/iamNilotpal/ignitekv/pkg/errors"
)

// Dir is the marker subdirectory existing_engine-style auto-detection looks
// for, mirroring original_source/src/engines's SLED_DIR constant.
const Dir = ".sled"

// ErrNotImplemented is returned by every data operation this stub exposes.
var ErrNotImplemented = stdErrors.New("sled engine is not implemented")

// Engine satisfies engine.KV but every data operation fails: this module
// does not implement the sled storage format.
type Engine struct {
	dir string
}

// Open creates the ".sled" marker directory (so a later auto-detect run
// recognizes this root as sled-backed) and returns a stub Engine.
func Open(_ context.Context, root string) (*Engine, error) {
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, kverrors.NewStorageError(err, kverrors.ErrorCodeIO, "failed to create sled marker directory").
			WithPath(dir)
	}
	return &Engine{dir: dir}, nil
}

func (e *Engine) unsupported(op string) error {
	return kverrors.NewStorageError(ErrNotImplemented, kverrors.ErrorCodeInternal, "sled engine is not implemented").
		WithPath(e.dir).
		WithFileName(op)
}

// Get always fails: the sled engine's on-disk format is not implemented.
func (e *Engine) Get(_ context.Context, _ string) (string, bool, error) {
	return "", false, e.unsupported("Get")
}

// Set always fails.
func (e *Engine) Set(_ context.Context, _, _ string) error {
	return e.unsupported("Set")
}

// Remove always fails.
func (e *Engine) Remove(_ context.Context, _ string) error {
	return e.unsupported("Remove")
}

// Close is a no-op; there is nothing to flush.
func (e *Engine) Close() error {
	return nil
}
