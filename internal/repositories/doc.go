// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository issues parameterized count/select/insert/delete queries by
// exact key match; schema creation lives in shared's migration runner, never
// here.
//
// Key Implementations:
//   - [UserRepository] : magic-link accounts with email-based lookups
//   - [SessionRepository] : login sessions keyed by (raw token, user uuid)
//   - [AdminRepository] : the single admin row, 0-or-1 enforced at write time
//   - [PlaylistCacheRepository] : locally cached playlist exports so a mirror
//     run can skip re-fetching the source
//
// Persistence failures are classified with shared sentinels so callers can
// distinguish "nothing found" from "found but malformed" from "store
// unreachable".
package repositories
