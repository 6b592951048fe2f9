package errkind

import "errors"

// Kind tags a validation or business-rule failure. Kinds are returned as
// values, not panics; handlers translate them to HTTP statuses and the
// snake_case codes go on the wire as-is.
type Kind string

const (
	KindBlank      Kind = "blank_error"
	KindHalfsize   Kind = "halfsize_error"
	KindRangeCheck Kind = "range_check_error"
	KindDuplicate  Kind = "duplicate_error"
	KindDateCheck  Kind = "date_check_error"
	KindNotFound   Kind = "not_found"
	KindSelfDelete Kind = "self_delete_error"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the Kind from err. The second return is false when err is
// nil or carries no Kind (an unexpected store-level failure).
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries exactly the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
