// Package internal holds non-exported helpers shared by the warden root
// package. Nothing here is part of the public API surface.
package internal
