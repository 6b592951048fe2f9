package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tkhr-dev/nippo/internal/errkind"
)

// Violations maps a field name to the error kind it violated. Validators
// never mutate their input; they only record the first failure per field.
type Violations map[string]errkind.Kind

func (v Violations) Empty() bool { return len(v) == 0 }

// First returns an arbitrary violation as a tagged error, or nil when clean.
// Handlers use it when a single error code is enough for the response.
func (v Violations) First() *errkind.Error {
	for field, kind := range v {
		return errkind.New(kind, field)
	}
	return nil
}

var halfsizeRe = regexp.MustCompile(`^[a-zA-Z0-9]*$`)

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = errkind.KindBlank
	}
}

// MaxLen counts runes, not bytes; names are routinely non-ASCII.
func MaxLen(field, value string, maxLen int, v Violations) {
	if utf8.RuneCountInString(value) > maxLen {
		v[field] = errkind.KindRangeCheck
	}
}

// Password validates a plaintext password. When required is false and the
// value is empty the check is skipped entirely: on update an empty password
// means "leave unchanged". That asymmetry with create is intentional.
func Password(field, value string, required bool, v Violations) {
	if value == "" {
		if required {
			v[field] = errkind.KindBlank
		}
		return
	}
	if !halfsizeRe.MatchString(value) {
		v[field] = errkind.KindHalfsize
		return
	}
	if len(value) < 8 || len(value) > 16 {
		v[field] = errkind.KindRangeCheck
	}
}
