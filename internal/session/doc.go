// Package session provides the SQLite-backed client session: the bearer
// credential, the signed-in user, and the cached active punch.
//
// A Store is created once per process and passed to whatever needs it.
// Nothing in this package is global.
//
// # Lifecycle
//
//   - Open: creates or opens the session file
//   - SetCredential / SetUser: populated on login
//   - CachePunch / ClearCachedPunch: follow punch-in and punch-out
//   - Clear: logout, or a credential rejected by the backend
//
// # Fail-open reads
//
// A cached punch that no longer decodes is reported as absent, which makes
// the caller ask the backend instead. A credential that is a JWT with an
// expired "exp" claim is reported as absent. Signatures are not checked;
// the backend remains the authority on validity.
//
// # Database Configuration
//
//   - WAL mode: the CLI and a concurrent shell can read while one writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
package session
