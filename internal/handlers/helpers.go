package handlers

import (
	"net/http"

	"github.com/tkhr-dev/nippo/auth"
	"github.com/tkhr-dev/nippo/httpx"
	"github.com/tkhr-dev/nippo/internal/errkind"
	"github.com/tkhr-dev/nippo/internal/models"
	"github.com/tkhr-dev/nippo/internal/services"
)

// statusForKind maps the error taxonomy to HTTP statuses. Anything without a
// kind is an unexpected store failure and becomes a generic 500 once, at the
// boundary.
func statusForKind(kind errkind.Kind) int {
	switch kind {
	case errkind.KindNotFound:
		return http.StatusNotFound
	case errkind.KindDuplicate, errkind.KindDateCheck:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	if kind, ok := errkind.KindOf(err); ok {
		httpx.JSONError(w, statusForKind(kind), string(kind), nil)
		return
	}
	httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}

// actingEmployee resolves the authenticated employee from the session
// context. RequireAuth runs first, so absence here means the account was
// deleted mid-session.
func actingEmployee(r *http.Request, employees *services.EmployeeService) (*models.Employee, bool) {
	code, ok := auth.EmployeeCodeFromContext(r.Context())
	if !ok {
		return nil, false
	}
	e, err := employees.FindByCode(code)
	if err != nil {
		return nil, false
	}
	return e, true
}
