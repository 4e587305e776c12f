// Package users manages accounts, roles, and bearer-token sessions.
//
// Passwords are stored as salted SHA-256 digests and never leave the package.
// Sessions are opaque UUID tokens with an absolute expiry; ResolveToken is the
// authentication entry point used by the HTTP middleware.
package users
