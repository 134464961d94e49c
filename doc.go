// Package biblio is the backend for the Biblio book collection and forum
// service: users keep book collections, write posts, comment, reply, and
// like, all behind a dual-token authentication core.
//
// Authentication:
//   - Short-lived access tokens (5 minutes) travel as bearer headers and are
//     verified by the Authenticate middleware, which attaches the decoded
//     claims to the request without rejecting anonymous requests.
//   - Long-lived refresh tokens (24 hours) are signed with a distinct secret,
//     delivered via an http-only cookie, and persisted on the user row. Only
//     one refresh token is valid per user; issuing a new one overwrites it,
//     logging out clears it.
//
// Authorization is a small set of composable policies (RequireAuthenticated,
// RequireAdmin, RequireSelfOrAdmin) applied per route, plus the
// CheckResourceOwner helper for owner-or-admin mutation guards on fetched
// records.
package biblio
