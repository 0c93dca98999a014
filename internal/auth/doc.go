// Package auth implements the authentication core: login sessions, the admin
// setup gate, and the one-time admin handshake.
//
// [SessionModel] combines a private in-memory cache, a private cookie cipher,
// and the session repository to issue, verify, and revoke login sessions with
// a 24 hour lifetime. The raw session token never leaves the server; clients
// only ever hold the encrypted envelope.
//
// [AdminGate] fronts the admin table with a cached setup check. The system
// supports exactly zero or one admin identity; anything else is a fatal
// misconfiguration.
//
// [Handshake] bootstraps the admin password exchange: a single-use symmetric
// key is handed out encrypted under the admin's RSA public key, consumed by
// exactly one decrypt attempt, and a successful password check promotes the
// caller to a process-wide admin id.
package auth
