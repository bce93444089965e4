// Package ocr invokes the external OCR converter and decides when extracted
// text should be replaced by an OCR pass.
package ocr

import (
	"errors"
	"fmt"
)

// ErrTimeout indicates the OCR subprocess exceeded its per-document timeout.
var ErrTimeout = errors.New("ocr tool timed out")

// ErrDisabled indicates no OCR tool is configured.
var ErrDisabled = errors.New("ocr tool not configured")

// ToolError represents a failed OCR tool invocation.
type ToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("ocr tool %s failed: %v: %s", e.Tool, e.Err, e.Stderr)
	}
	return fmt.Sprintf("ocr tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// IsTimeout returns true if the error indicates an OCR timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
