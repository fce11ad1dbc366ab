// Package store provides a SQLite-backed cache of completed translations.
//
// Each entry records one translation request (mode plus input text) and the
// JSON it produced. Entries are content-addressed: the ID is derived from the
// request alone, so translating the same input twice hits the same row.
//
// # Patterns
//
// Idempotent writes
//   - INSERT OR IGNORE on the content-addressed ID
//   - A repeated Put is a no-op and reports inserted=false
//
// Logical ordering
//   - seq INTEGER is assigned on insert (MAX(seq)+1), never a timestamp
//   - List returns newest first: ORDER BY seq DESC, id COLLATE BINARY ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// IDs are computed by doc.TranslationID using RFC 8785 canonical JSON and
// SHA-256 with domain separation.
package store
