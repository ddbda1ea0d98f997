package img

import (
	"errors"
	"fmt"
)

// ErrImage matches every *ImageError.
var ErrImage = errors.New("image error")

// ImageError is returned for carriers that cannot be read, written or are
// in an unsupported format.
type ImageError struct {
	Path    string // File the error is about, if any
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ImageError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("image error: %s: %s", e.Path, msg)
	}
	return fmt.Sprintf("image error: %s", msg)
}

func (e *ImageError) Is(target error) bool {
	return target == ErrImage
}

func (e *ImageError) Unwrap() error {
	return e.Err
}
