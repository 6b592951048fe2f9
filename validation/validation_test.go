package validation

import (
	"strings"
	"testing"

	"github.com/tkhr-dev/nippo/internal/errkind"
)

func TestRequired(t *testing.T) {
	v := Violations{}
	Required("name", "", v)
	if v["name"] != errkind.KindBlank {
		t.Fatalf("expected blank_error got %v", v["name"])
	}
	v = Violations{}
	Required("name", "   ", v)
	if v["name"] != errkind.KindBlank {
		t.Fatalf("whitespace-only must be blank, got %v", v["name"])
	}
	v = Violations{}
	Required("name", "ok", v)
	if !v.Empty() {
		t.Fatalf("unexpected violation: %v", v)
	}
}

func TestMaxLenBoundary(t *testing.T) {
	v := Violations{}
	MaxLen("name", strings.Repeat("x", 20), 20, v)
	if !v.Empty() {
		t.Fatalf("20 chars must pass, got %v", v)
	}
	MaxLen("name", strings.Repeat("x", 21), 20, v)
	if v["name"] != errkind.KindRangeCheck {
		t.Fatalf("21 chars must fail with range_check_error, got %v", v["name"])
	}
}

func TestMaxLenCountsRunes(t *testing.T) {
	v := Violations{}
	MaxLen("name", strings.Repeat("あ", 20), 20, v)
	if !v.Empty() {
		t.Fatalf("20 multibyte runes must pass, got %v", v)
	}
}

func TestPasswordKinds(t *testing.T) {
	cases := []struct {
		password string
		required bool
		want     errkind.Kind // "" means no violation
	}{
		{"", true, errkind.KindBlank},
		{"", false, ""}, // optional empty: leave unchanged, skip checks
		{"ab12", true, errkind.KindRangeCheck},
		{"abcdefgh123456789", true, errkind.KindRangeCheck},
		{"pass word", true, errkind.KindHalfsize},
		{"password!", true, errkind.KindHalfsize},
		{"Passw0rd", true, ""},
		{"abcdefgh12345678", true, ""},
	}
	for _, c := range cases {
		v := Violations{}
		Password("password", c.password, c.required, v)
		got := v["password"]
		if got != c.want {
			t.Fatalf("password %q required=%v: expected %q got %q", c.password, c.required, c.want, got)
		}
	}
}

func TestFirstReturnsTaggedError(t *testing.T) {
	v := Violations{}
	if v.First() != nil {
		t.Fatalf("empty violations must yield nil")
	}
	Required("title", "", v)
	err := v.First()
	if err == nil || err.Kind != errkind.KindBlank {
		t.Fatalf("expected blank_error got %v", err)
	}
}
