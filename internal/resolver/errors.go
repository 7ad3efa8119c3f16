package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// Classification markers for resolution failures. Callers classify with
// errors.Is; the API layer maps these onto response codes.
var (
	ErrInvalidQuery      = errors.New("invalid query")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrExtractionFailed  = errors.New("extraction failed")
	ErrBlobStoreFailed   = errors.New("blob store failed")
	ErrAcquisitionFailed = errors.New("acquisition failed")
	ErrTimeout           = errors.New("timeout")
	ErrInternal          = errors.New("internal resolution error")
)

// Wrap builds an error message that includes phase context while tagging
// it with the provided marker for later classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, phase, message string, err error) error {
	detail := buildDetail(phase, message)
	if marker == nil {
		marker = ErrInternal
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(phase, message string) string {
	parts := make([]string, 0, 2)
	if phase = strings.TrimSpace(phase); phase != "" {
		parts = append(parts, phase)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "resolution failure"
	}
	return strings.Join(parts, ": ")
}
