// Package result provides the invalid/conflict/not_found/unauthorized
// envelope used to carry validation outcomes across package boundaries
// without resorting to sentinel errors or panics.
package result

import "net/http"

// Kind classifies why an operation failed. The zero value, KindNone, means
// the operation succeeded.
type Kind int

const (
	KindNone Kind = iota
	KindInvalid
	KindConflict
	KindNotFound
	KindUnauthorized
)

// HTTPStatus maps a Kind to the status code the API layer should answer
// with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalid:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusOK
	}
}

// Result carries either a payload or a Kind+message describing why there
// is none. A zero-value Result is a success with a nil payload.
type Result struct {
	Kind    Kind
	Message string
	Payload any
}

// OK reports whether the result represents success.
func (r Result) OK() bool {
	return r.Kind == KindNone
}

// Ok builds a successful result, optionally carrying a payload.
func Ok(payload ...any) Result {
	r := Result{}
	if len(payload) > 0 {
		r.Payload = payload[0]
	}
	return r
}

// Fail builds a failed result of the given kind.
func Fail(kind Kind, message string) Result {
	return Result{Kind: kind, Message: message}
}

// Invalid builds a KindInvalid failure.
func Invalid(message string) Result {
	return Fail(KindInvalid, message)
}

// Conflict builds a KindConflict failure.
func Conflict(message string) Result {
	return Fail(KindConflict, message)
}

// NotFound builds a KindNotFound failure.
func NotFound(message string) Result {
	return Fail(KindNotFound, message)
}

// Unauthorized builds a KindUnauthorized failure.
func Unauthorized(message string) Result {
	return Fail(KindUnauthorized, message)
}
