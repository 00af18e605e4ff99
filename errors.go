package warden

import "errors"

// Engine-level error taxonomy. Every store and codec failure is re-tagged
// into one of these before it leaves the engine; callers map them to
// responses with errors.Is and never see backend error types.
var (
	// ErrInvalidInput is an exported constant or variable used by the authentication engine.
	ErrInvalidInput = errors.New("invalid input")
	// ErrIncorrectCredentials is an exported constant or variable used by the authentication engine.
	ErrIncorrectCredentials = errors.New("incorrect credentials")
	// ErrUserAlreadyExists is an exported constant or variable used by the authentication engine.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrTokenInvalid is an exported constant or variable used by the authentication engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrMissingToken is an exported constant or variable used by the authentication engine.
	ErrMissingToken = errors.New("missing token")
	// ErrAlreadyLoggedOut is an exported constant or variable used by the authentication engine.
	ErrAlreadyLoggedOut = errors.New("already logged out")
	// ErrUnexpected is an exported constant or variable used by the authentication engine.
	ErrUnexpected = errors.New("unexpected authentication error")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// Store-level sentinels. Backend variants (in-memory, Redis, postgres/)
// return these so the engine can re-tag without inspecting backend types.
var (
	// ErrUserNotFound is an exported constant or variable used by the authentication engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is an exported constant or variable used by the authentication engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenAlreadyRevoked is an exported constant or variable used by the authentication engine.
	ErrTokenAlreadyRevoked = errors.New("token already revoked")
	// ErrChallengeNotFound is an exported constant or variable used by the authentication engine.
	ErrChallengeNotFound = errors.New("pending challenge not found")
	// ErrStoreUnavailable is an exported constant or variable used by the authentication engine.
	ErrStoreUnavailable = errors.New("store backend unavailable")
)

// Credential parse failures. All of them are ErrInvalidInput-class at the
// engine boundary; the specific sentinel survives in the wrap chain.
var (
	// ErrInvalidEmail is an exported constant or variable used by the authentication engine.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidPassword is an exported constant or variable used by the authentication engine.
	ErrInvalidPassword = errors.New("password must be at least 8 characters")
	// ErrInvalidChallengeID is an exported constant or variable used by the authentication engine.
	ErrInvalidChallengeID = errors.New("invalid challenge id")
	// ErrInvalidCode is an exported constant or variable used by the authentication engine.
	ErrInvalidCode = errors.New("invalid one-time code")
)
