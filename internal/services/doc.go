// Package services defines shared utilities consumed by the import engine and
// its backend adapters.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, per-file steps, recording paths, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent outcome classifications (extraction, room, persist,
//     setup).
//
// Use these helpers when wiring new backend logic so operational behaviour
// (error handling, observability) stays uniform across adapters.
package services
