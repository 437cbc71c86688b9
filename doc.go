// Package auth implements accounts for the shop API: bcrypt password
// hashing, signed session tokens, a bearer token middleware and the
// account lifecycle over a pluggable document store.
//
// Sessions:
//   - Every signup and login issues a new token and stores it on the user.
//     SessionGuard accepts a verified token only while it is the stored one,
//     so logging in again invalidates earlier tokens and deleting an account
//     invalidates its token.
//
// Storage:
//   - Users wraps a repository.Repository[*User]. The bunstore package serves
//     SQLite and PostgreSQL and the mongostore package serves MongoDB. Unique
//     violations surface as a 409 go-errors conflict whatever the backend.
//
// Activity sinks:
//   - ActivitySink receives signup, login, profile, password and deletion
//     events. Sinks run best-effort (errors are logged) so you can forward to
//     a database or a queue without blocking authentication.
package auth
