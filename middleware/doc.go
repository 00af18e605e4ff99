// Package middleware exposes the HTTP adapter that enforces session
// verification in front of protected handlers.
//
// # Guards
//
//   - [SessionGuard] — cookie extraction + Engine.VerifySession.
//
// The guard reads the "jwt" cookie, calls Engine.VerifySession, and injects
// the authenticated email into the request context for downstream handlers
// via [EmailFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.VerifySession.
//
// # What this package must NOT do
//
//   - Parse or create session tokens directly (delegates to Engine).
//   - Access any store backend (Engine handles I/O).
//   - Distinguish rejection causes to the client: every failure is 401.
package middleware
