// Package preflight provides readiness checks for external services and
// filesystem paths that mediavault depends on.
//
// The daemon runs RunAll once at startup and logs any failures instead of
// refusing to start: a temporarily unreachable extraction API should not
// keep cached lookups from being served. Individual check functions are
// also usable on their own.
package preflight
