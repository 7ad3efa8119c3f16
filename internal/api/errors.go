package api

import (
	"errors"
	"net/http"

	"mediavault/internal/resolver"
)

// ErrorKindFor maps a resolution failure onto its transport name.
func ErrorKindFor(err error) string {
	switch {
	case errors.Is(err, resolver.ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, resolver.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, resolver.ErrExtractionFailed):
		return "extraction_failed"
	case errors.Is(err, resolver.ErrBlobStoreFailed):
		return "blob_store_failed"
	case errors.Is(err, resolver.ErrAcquisitionFailed):
		return "acquisition_failed"
	case errors.Is(err, resolver.ErrTimeout):
		return "timeout"
	default:
		return "internal"
	}
}

// HTTPStatusFor maps a resolution failure onto a response code.
func HTTPStatusFor(err error) int {
	switch {
	case errors.Is(err, resolver.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, resolver.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, resolver.ErrExtractionFailed):
		return http.StatusNotFound
	case errors.Is(err, resolver.ErrStoreUnavailable),
		errors.Is(err, resolver.ErrBlobStoreFailed),
		errors.Is(err, resolver.ErrAcquisitionFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
