package manifest

import (
	"context"
	"fmt"

	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// FileName is the name of the manifest inside a package directory.
const FileName = "Manifest"

// Digester writes the Manifest of one package directory.
type Digester interface {
	Digest(ctx context.Context, dir string) error
}

// DigestError reports a failed manifest generation.
type DigestError struct {
	Dir string
	Err error
}

func (e *DigestError) Error() string {
	return fmt.Sprintf("digest %s: %v", e.Dir, e.Err)
}

func (e *DigestError) Unwrap() error { return e.Err }

// ErrorCode implements [errors.Coded].
func (e *DigestError) ErrorCode() errors.Code { return errors.ErrCodeDigest }

// MissingDescriptorError reports a package directory without a build
// descriptor to hand to the external tool.
type MissingDescriptorError struct {
	Dir string
}

func (e *MissingDescriptorError) Error() string {
	return fmt.Sprintf("no build descriptor in %s", e.Dir)
}

// ErrorCode implements [errors.Coded].
func (e *MissingDescriptorError) ErrorCode() errors.Code { return errors.ErrCodeMissingDescriptor }
