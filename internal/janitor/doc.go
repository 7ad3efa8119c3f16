// Package janitor expires stale catalog records on a timer. Each sweep
// deletes artifacts older than the configured retention window and runs
// independently of live resolutions; deletions racing an in-flight lookup
// degrade to silent no-ops on the access-stat side.
package janitor
