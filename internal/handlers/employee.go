package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tkhr-dev/nippo/httpx"
	"github.com/tkhr-dev/nippo/internal/models"
	"github.com/tkhr-dev/nippo/internal/services"
	"github.com/tkhr-dev/nippo/validation"
)

// EmployeeHandler exposes account administration. Every endpoint is
// admin-only; the self-deletion guard itself lives in the service.
type EmployeeHandler struct {
	Employees *services.EmployeeService
}

func NewEmployeeHandler(employees *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{Employees: employees}
}

// admin loads the acting employee and rejects non-administrators.
func (h *EmployeeHandler) admin(w http.ResponseWriter, r *http.Request) (*models.Employee, bool) {
	acting, ok := actingEmployee(r, h.Employees)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	if !acting.IsAdmin() {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return nil, false
	}
	return acting, true
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.admin(w, r); !ok {
		return
	}
	list, err := h.Employees.FindAll()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
}

func (h *EmployeeHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.admin(w, r); !ok {
		return
	}
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_code", nil)
		return
	}
	e, err := h.Employees.FindByCode(code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.admin(w, r); !ok {
		return
	}
	var input struct {
		Code     string `json:"code"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	input.Code = strings.TrimSpace(input.Code)
	role := input.Role
	if role == "" {
		role = models.RoleGeneral
	}
	v := validation.Violations{}
	validation.Required("code", input.Code, v)
	validation.MaxLen("code", input.Code, 10, v)
	validation.Required("name", input.Name, v)
	validation.MaxLen("name", input.Name, 20, v)
	if role != models.RoleAdmin && role != models.RoleGeneral {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_role", nil)
		return
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	e, err := h.Employees.Save(services.EmployeeInput{
		Code:     input.Code,
		Name:     input.Name,
		Password: input.Password,
		Role:     role,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.admin(w, r); !ok {
		return
	}
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_code", nil)
		return
	}
	var input struct {
		Name     string `json:"name"`
		Password string `json:"password"` // empty keeps the current password
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	role := input.Role
	if role == "" {
		role = models.RoleGeneral
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	validation.MaxLen("name", input.Name, 20, v)
	if role != models.RoleAdmin && role != models.RoleGeneral {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_role", nil)
		return
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	e, err := h.Employees.Update(code, services.EmployeeUpdate{
		Name:     input.Name,
		Password: input.Password,
		Role:     role,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	acting, ok := h.admin(w, r)
	if !ok {
		return
	}
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_code", nil)
		return
	}
	if err := h.Employees.Delete(code, acting); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": code})
}
