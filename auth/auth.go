package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/tkhr-dev/nippo/httpx"
)

type ctxKey string

const (
	sessionCookieName = "session"
	employeeCtxKey    = ctxKey("employeeCode")
)

// EmployeeVerifier validates that a session still refers to an active
// (non-deleted) employee. Set during app bootstrap via SetEmployeeVerifier;
// when nil no extra verification is performed.
type EmployeeVerifier func(ctx context.Context, code string) bool

var verifier EmployeeVerifier

func SetEmployeeVerifier(v EmployeeVerifier) { verifier = v }

// Secret returns SESSION_SECRET or a default dev value.
func Secret() string {
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "devsessionsecret"
}

// Employee codes are restricted to this shape before they are embedded in
// the cookie value, so the code.signature split stays unambiguous.
var codeRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

func sign(code string) string {
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(code))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSession sets a signed cookie carrying the employee code.
func CreateSession(w http.ResponseWriter, code string) {
	if !codeRe.MatchString(code) {
		return
	}
	value := code + "." + sign(code)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(14 * 24 * time.Hour),
	})
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie and returns the employee code.
func ParseSession(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 {
		return "", false
	}
	code, sig := parts[0], parts[1]
	if !codeRe.MatchString(code) {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(sign(code))) {
		return "", false
	}
	return code, true
}

// WithEmployeeCode stores the acting employee's code in the context.
func WithEmployeeCode(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, employeeCtxKey, code)
}

// EmployeeCodeFromContext extracts the acting employee's code.
func EmployeeCodeFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(employeeCtxKey)
	if v == nil {
		return "", false
	}
	code, ok := v.(string)
	return code, ok && code != ""
}

// Middleware attaches the employee code to the request context if present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code, ok := ParseSession(r); ok {
			r = r.WithContext(WithEmployeeCode(r.Context(), code))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects unauthenticated requests with 401 JSON. Sessions that
// refer to a deleted employee are cleared and rejected the same way.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code, ok := EmployeeCodeFromContext(r.Context())
		if !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		if verifier != nil && !verifier(r.Context(), code) {
			ClearSession(w)
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
