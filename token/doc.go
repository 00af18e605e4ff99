// Package token mints and verifies the signed, self-contained session
// credentials used by the warden engine. A token binds an email subject to
// an issuance and expiry instant; it is never stored server-side on
// issuance, and its validity is signature + expiry here plus absence from
// the revocation ledger, which the engine checks separately so this package
// stays storage-free and trivially unit-testable.
package token
