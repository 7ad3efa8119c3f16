// Package api defines wire-format types and converters for the HTTP API
// layer, plus the client the CLI uses to talk to a running daemon. It
// translates internal catalog models into transport-friendly DTOs so
// consumers never couple to internal types.
//
// DTOs use camelCase JSON tags. Internal enums (catalog.MediaKind, match
// tiers) are exposed as lowercase strings. Timestamps use RFC3339 with
// milliseconds.
package api
