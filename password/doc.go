// Package password provides the one-way, salted, memory-hard password
// digest persisted in place of plaintext. Digests use argon2id in the
// standard PHC string format; comparison is constant-time and always
// recomputes with the parameters stored alongside the digest.
package password
