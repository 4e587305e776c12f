// Package session persists the CLI's client-side state in bbolt: the bearer
// token, the cached user profile, and the document under OCR review.
//
// The store survives process restarts and notifies subscribers on every
// change, so long-running commands can react to sign-out from another
// process.
package session
