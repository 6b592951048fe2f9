package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, "E001")
	c := sessionCookie(w)
	if c == nil || c.Value == "" {
		t.Fatalf("session cookie not set")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	code, ok := ParseSession(req)
	if !ok || code != "E001" {
		t.Fatalf("expected E001 got %q ok=%v", code, ok)
	}
}

func TestSessionTamperRejected(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, "E001")
	c := sessionCookie(w)

	// Swap the employee code while keeping the signature.
	parts := strings.SplitN(c.Value, ".", 2)
	forged := &http.Cookie{Name: "session", Value: "A999." + parts[1]}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(forged)
	if _, ok := ParseSession(req); ok {
		t.Fatalf("forged session accepted")
	}
}

func TestSessionRejectsBadShape(t *testing.T) {
	for _, value := range []string{"", "nodot", "a.b.c", "bad code.sig"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: value})
		if _, ok := ParseSession(req); ok {
			t.Fatalf("value %q accepted", value)
		}
	}
}

func TestCreateSessionRejectsInvalidCode(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, "has space")
	if c := sessionCookie(w); c != nil {
		t.Fatalf("cookie set for invalid code")
	}
}

func TestMiddlewareInjectsContext(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, "E001")
	c := sessionCookie(w)

	var got string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, _ = EmployeeCodeFromContext(r.Context())
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	Middleware(next).ServeHTTP(httptest.NewRecorder(), req)
	if got != "E001" {
		t.Fatalf("expected E001 in context, got %q", got)
	}
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not run")
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	RequireAuth(next).ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestRequireAuthHonorsVerifier(t *testing.T) {
	SetEmployeeVerifier(func(_ context.Context, _ string) bool { return false })
	t.Cleanup(func() { SetEmployeeVerifier(nil) })

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not run for a stale session")
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithEmployeeCode(req.Context(), "E001"))
	w := httptest.NewRecorder()
	RequireAuth(next).ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	// The stale cookie is cleared.
	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("stale session cookie not cleared")
	}
}
