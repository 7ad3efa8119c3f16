// Package match implements the four-tier lookup cascade over the artifact
// catalog. Tiers run in strict priority order and short-circuit at the first
// hit: exact fingerprint, high-similarity ratio, keyword overlap, and a
// low-similarity fallback. Queries carrying a recognizable external media
// identifier take an identity shortcut reported at the exact tier.
package match
