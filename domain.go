package warden

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tobysalz/warden/internal"
)

// Email is a validated, normalized email address. Two Email values compare
// equal when their normalized forms are equal; the zero value is invalid and
// only [ParseEmail] produces a usable one.
type Email struct {
	value string
}

// ParseEmail describes the parseemail operation and its observable behavior.
//
// ParseEmail may return an error when input validation, dependency calls, or security checks fail.
// ParseEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ParseEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Email{}, fmt.Errorf("%w: empty", ErrInvalidEmail)
	}

	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		// Reject display-name and angle-bracket forms: only a bare
		// RFC-shaped address is a valid credential identifier.
		return Email{}, fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}

	return Email{value: normalized}, nil
}

// String describes the string operation and its observable behavior.
func (e Email) String() string {
	return e.value
}

// IsZero reports whether e was produced by [ParseEmail].
func (e Email) IsZero() bool {
	return e.value == ""
}

// Password is a validated plaintext password. It exists only between the
// boundary layer and the argon2 hasher; it is never persisted and has no
// stable serialized form.
type Password struct {
	value string
}

// ParsePassword describes the parsepassword operation and its observable behavior.
//
// ParsePassword may return an error when input validation, dependency calls, or security checks fail.
// ParsePassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ParsePassword(raw string) (Password, error) {
	if utf8.RuneCountInString(raw) < 8 {
		return Password{}, ErrInvalidPassword
	}
	return Password{value: raw}, nil
}

// String describes the string operation and its observable behavior.
func (p Password) String() string {
	return p.value
}

// ChallengeID is an opaque 128-bit login-challenge identifier, generated
// fresh for every login attempt that requires a second factor. It
// round-trips through [ParseChallengeID] and String in canonical UUID form.
type ChallengeID struct {
	value string
}

// NewChallengeID describes the newchallengeid operation and its observable behavior.
//
// NewChallengeID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewChallengeID() ChallengeID {
	return ChallengeID{value: uuid.NewString()}
}

// ParseChallengeID describes the parsechallengeid operation and its observable behavior.
//
// ParseChallengeID may return an error when input validation, dependency calls, or security checks fail.
// ParseChallengeID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ParseChallengeID(raw string) (ChallengeID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return ChallengeID{}, fmt.Errorf("%w: %v", ErrInvalidChallengeID, err)
	}
	return ChallengeID{value: id.String()}, nil
}

// String describes the string operation and its observable behavior.
func (c ChallengeID) String() string {
	return c.value
}

// IsZero reports whether c carries a generated or parsed identifier.
func (c ChallengeID) IsZero() bool {
	return c.value == ""
}

const oneTimeCodeDigits = 6

// OneTimeCode is a second-factor code of exactly six ASCII digits.
type OneTimeCode struct {
	value string
}

// NewOneTimeCode describes the newonetimecode operation and its observable behavior.
//
// NewOneTimeCode may return an error when input validation, dependency calls, or security checks fail.
// NewOneTimeCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewOneTimeCode() (OneTimeCode, error) {
	code, err := internal.NewNumericCode(oneTimeCodeDigits)
	if err != nil {
		return OneTimeCode{}, err
	}
	return OneTimeCode{value: code}, nil
}

// ParseOneTimeCode describes the parseonetimecode operation and its observable behavior.
//
// ParseOneTimeCode may return an error when input validation, dependency calls, or security checks fail.
// ParseOneTimeCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ParseOneTimeCode(raw string) (OneTimeCode, error) {
	if len(raw) != oneTimeCodeDigits {
		return OneTimeCode{}, fmt.Errorf("%w: must be exactly %d digits", ErrInvalidCode, oneTimeCodeDigits)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return OneTimeCode{}, fmt.Errorf("%w: non-numeric character", ErrInvalidCode)
		}
	}
	return OneTimeCode{value: raw}, nil
}

// String describes the string operation and its observable behavior.
func (c OneTimeCode) String() string {
	return c.value
}

// User is the directory record for one account. Email is the unique key and
// owning identity; PasswordHash is the argon2id PHC string produced by
// password.Argon2 — plaintext never reaches a [UserDirectory].
type User struct {
	Email         Email
	PasswordHash  string
	RequiresTwoFA bool
}
