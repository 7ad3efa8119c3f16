// Package notifications delivers engine events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Per-event toggles let operators silence acquisition or sweep
// chatter while keeping error alerts.
//
// Extend this package if you need alternative transports; engine code
// depends only on the simple Service interface.
package notifications
