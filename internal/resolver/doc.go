// Package resolver coordinates a resolution request end to end: consult
// the match cascade, and on a miss acquire the media, hand the payload to
// the blob channel, and register exactly one catalog record. Every
// failure surfaces as a typed result at the coordinator boundary; no
// collaborator error escapes unhandled.
package resolver
