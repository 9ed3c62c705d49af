package goJWT

import "errors"

const (
	// MessageInvalidAlgorithm is the text of a TokenError raised for an algorithm mismatch.
	MessageInvalidAlgorithm = "Invalid algorithm specified"
	// MessageTokenInvalid is the text of every other TokenError.
	MessageTokenInvalid = "Token is invalid or expired"
)

var (
	// ErrConfigValidation is wrapped by every configuration construction or merge failure.
	ErrConfigValidation = errors.New("jwt configuration invalid")
	// ErrSetup is wrapped by setup failures caused by a missing or malformed host configuration block.
	ErrSetup = errors.New("jwt setup failed")
	// ErrInvalidAlgorithm matches a TokenError raised for a token signed with another algorithm.
	ErrInvalidAlgorithm = errors.New(MessageInvalidAlgorithm)
	// ErrTokenInvalid matches every other TokenError.
	ErrTokenInvalid = errors.New(MessageTokenInvalid)
	// ErrServiceClosed is returned by async calls after Close.
	ErrServiceClosed = errors.New("jwt service closed")
)

// TokenError is the only error Decode returns for a rejected token. Its message
// is one of two fixed strings so callers cannot learn which check failed; the
// underlying cause is kept for operators through errors.Unwrap.
type TokenError struct {
	kind  error
	cause error
}

func newTokenError(kind, cause error) *TokenError {
	return &TokenError{kind: kind, cause: cause}
}

func (e *TokenError) Error() string {
	if e == nil || e.kind == nil {
		return MessageTokenInvalid
	}
	return e.kind.Error()
}

// Is matches ErrInvalidAlgorithm or ErrTokenInvalid.
func (e *TokenError) Is(target error) bool {
	if e == nil {
		return false
	}
	return target == e.kind
}

// Unwrap returns the underlying verification failure.
func (e *TokenError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}
