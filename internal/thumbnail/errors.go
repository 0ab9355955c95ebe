package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
)

// ErrorClass is the coarse classification logged for generation failures
type ErrorClass string

const (
	ClassFormat       ErrorClass = "format"
	ClassSecurity     ErrorClass = "security"
	ClassInvalidState ErrorClass = "invalid-state"
	ClassUnknown      ErrorClass = "unknown"
)

// Stage is the derivation step that failed
type Stage string

const (
	StageDecode   Stage = "decode"
	StageValidate Stage = "validate"
	StageDraw     Stage = "draw"
)

// Sentinel errors returned by decoders and validation
var (
	ErrEmptySource      = errors.New("empty image source")
	ErrInvalidDimension = errors.New("invalid image dimensions")
	ErrUnsupportedURI   = errors.New("unsupported data URI")
	ErrMalformedImage   = errors.New("malformed image data")
	ErrDrawFailed       = errors.New("draw failed")
	ErrDecoderPanic     = errors.New("decoder panicked")
)

// GenerationError is a cached derivation failure. It is returned by
// Cache.Get until the identity is invalidated.
type GenerationError struct {
	ID    string
	Stage Stage
	Class ErrorClass
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("thumbnail %s: %s failed (%s): %v", e.ID, e.Stage, e.Class, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Classify maps a decode/draw error to its coarse class
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassUnknown
	case errors.Is(err, fs.ErrPermission):
		return ClassSecurity
	case errors.Is(err, image.ErrFormat), errors.Is(err, ErrUnsupportedURI),
		errors.Is(err, ErrMalformedImage):
		return ClassFormat
	case errors.Is(err, ErrEmptySource), errors.Is(err, ErrInvalidDimension),
		errors.Is(err, fs.ErrNotExist), errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ClassInvalidState
	default:
		return ClassUnknown
	}
}
