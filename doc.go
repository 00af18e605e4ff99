// Package warden implements an authentication and session lifecycle engine:
// email+password sign-up and login, an optional one-shot numeric second
// factor, signed time-bound session tokens, and permanent invalidation of a
// session on logout.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// warden is the public surface. It exposes [Engine], [Builder], [Config], the
// credential value types ([Email], [Password], [ChallengeID], [OneTimeCode]),
// and the three store contracts ([UserDirectory], [RevocationLedger],
// [ChallengeStore]). Every store exists in interchangeable backend variants:
// the in-memory variants live in this package, Redis variants of the two
// expiring stores live alongside them, and a relational user directory lives
// under postgres/. The engine depends only on the contracts and never on a
// concrete backend.
//
// # What this package must NOT do
//
//   - Expose Redis clients, pgx pools, or encoding details in its public API
//     beyond the backend constructors.
//   - Cache store contents across calls — every operation re-reads the
//     authoritative store so revocations and challenge overwrites are always
//     observed.
//   - Retry internally. Each storage or crypto failure is surfaced once,
//     tagged by kind; a 2FA retry is the caller repeating the call.
//
// # Failure taxonomy
//
// All store and codec errors are re-tagged at the engine boundary into the
// closed set in errors.go. [ErrUnexpected] is the only class logged with
// detail server-side; everything else carries no backend information.
package warden
