// Package textutil provides query normalization, fingerprinting, and
// similarity utilities for the resolution engine.
//
// The primary use cases are:
//   - Normalizing free-text media queries into a stable canonical form
//   - Deriving deterministic fingerprint keys from normalized queries
//   - Computing sequence-alignment similarity between normalized strings
//   - Extracting canonical external media identifiers from queries and URLs
//
// Normalization lowercases text, folds diacritics to ASCII, strips characters
// outside letters/digits/hyphen/space, collapses whitespace, and removes a
// fixed stop-word set. Normalization of a non-empty query never yields an
// empty string.
package textutil
