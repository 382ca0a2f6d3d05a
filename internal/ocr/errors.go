package ocr

import (
	"errors"
	"fmt"
)

// Common recognition errors
var (
	// ErrImageTooLarge is returned when the image exceeds the configured size limit.
	ErrImageTooLarge = errors.New("image size exceeds the maximum limit")

	// ErrInvalidImage is returned when the provided data is not a supported image.
	ErrInvalidImage = errors.New("invalid or unsupported image data")

	// ErrEmptyImage is returned when no image bytes were provided.
	ErrEmptyImage = errors.New("image data is empty")

	// ErrRecognitionFailed is returned when the recognition backend fails to
	// process the image.
	ErrRecognitionFailed = errors.New("text recognition failed")

	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS environment variables are configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrUnsupportedEngine is returned when an unknown engine kind is requested.
	ErrUnsupportedEngine = errors.New("unsupported recognition engine")
)

// RecognitionError wraps errors with additional context about the recognition failure.
type RecognitionError struct {
	// Op is the operation that failed (e.g., "Recognize", "NewVisionEngine").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *RecognitionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *RecognitionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRecognitionError creates a new RecognitionError with the specified operation and underlying error.
func NewRecognitionError(op string, err error, details string) *RecognitionError {
	return &RecognitionError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapRecognitionError wraps an error as a RecognitionError if it isn't already one.
func WrapRecognitionError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var recErr *RecognitionError
	if errors.As(err, &recErr) {
		return err // Already wrapped
	}

	return NewRecognitionError(op, err, details)
}
