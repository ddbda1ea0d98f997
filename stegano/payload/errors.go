package payload

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to test for them.
var (
	ErrNoData   = errors.New("no data to embed")
	ErrTooLarge = errors.New("payload is too large")

	// ErrExtract matches every extraction failure, including the two below.
	ErrExtract = errors.New("extraction failed")
	// ErrKey signals a wrong stego password. It is a guess: nothing
	// authenticates the embedded bytes.
	ErrKey = errors.New("wrong stego password")
	// ErrEncryption signals a wrong encryption password.
	ErrEncryption = errors.New("wrong encryption password")
)

// EmbedError is returned when the payload cannot be embedded. It is always
// raised before the carrier is touched.
type EmbedError struct {
	Kind    error  // ErrNoData or ErrTooLarge
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *EmbedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("embed error: %s", e.Message)
	}
	if e.Kind != nil {
		return fmt.Sprintf("embed error: %s", e.Kind.Error())
	}
	return "embed error"
}

func (e *EmbedError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *EmbedError) Unwrap() error {
	return e.Err
}

// ExtractError is returned when no payload could be recovered.
type ExtractError struct {
	Kind    error  // ErrKey, ErrEncryption or nil for a generic failure
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ExtractError) Error() string {
	msg := e.Message
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if msg == "" {
		msg = ErrExtract.Error()
	}
	return fmt.Sprintf("extract error: %s", msg)
}

func (e *ExtractError) Is(target error) bool {
	if target == ErrExtract {
		return true
	}
	return e.Kind != nil && target == e.Kind
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// NewKeyError builds the error for a suspected wrong stego password.
func NewKeyError(message string, err error) error {
	return &ExtractError{Kind: ErrKey, Message: message, Err: err}
}

// NewEncryptionError builds the error for a suspected wrong encryption password.
func NewEncryptionError(message string, err error) error {
	return &ExtractError{Kind: ErrEncryption, Message: message, Err: err}
}

func newTooLarge(format string, args ...any) error {
	return &EmbedError{Kind: ErrTooLarge, Message: fmt.Sprintf(format, args...)}
}
