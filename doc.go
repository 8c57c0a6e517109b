// Package moodlog holds the client-side authentication session layer of the
// Moodlog application.
//
// The module is a set of small packages under pkg/ plus one command:
//
//   - pkg/session keeps a token, refresh token, expiry, principal and device
//     fingerprint across an ephemeral and a durable storage tier, schedules
//     refresh checks and publishes state changes.
//   - pkg/kvstore and pkg/redis provide the storage tiers: in-memory, a YAML
//     file watched with fsnotify, and Redis with pub/sub change notifications.
//   - pkg/authapi is the HTTP client for the auth REST API, with separate user
//     and admin endpoint sets.
//   - pkg/authstore ties a session.Manager to the API: login, registration,
//     logout, restore on startup and token refresh on demand.
//   - pkg/fingerprint derives a stable device fingerprint from the runtime
//     environment.
//   - cmd/moodlog-session is a CLI that drives the whole flow.
//
// Supporting packages (config, logger, environment, requestid, broadcast,
// validator) follow the same conventions throughout: functional options,
// sentinel errors matched with errors.Is and structured logging via log/slog.
package moodlog
