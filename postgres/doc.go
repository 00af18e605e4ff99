// Package postgres provides the relational UserDirectory variant backed by a
// pgx connection pool. Schema management is embedded: opening a connection
// runs the goose migrations, so the users table always matches the binary.
//
// # Architecture boundaries
//
// This package persists and fetches directory records. Password comparison
// still happens in-process through the argon2 hasher — the database stores
// the PHC string and never participates in the comparison.
package postgres
