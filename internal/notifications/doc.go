// Package notifications delivers daemon-level operational events via
// pluggable notifiers.
//
// This is distinct from internal/sessionctl's ClientCallback, which is a
// direct per-session collaborator handle, not a push-notification fan-out.
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled.
//
// Extend this package if you need alternative transports; all daemon code
// depends only on the simple Service interface.
package notifications
