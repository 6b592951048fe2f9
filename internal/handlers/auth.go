package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tkhr-dev/nippo/auth"
	"github.com/tkhr-dev/nippo/httpx"
	"github.com/tkhr-dev/nippo/internal/services"
)

type AuthHandler struct {
	Employees *services.EmployeeService
}

func NewAuthHandler(employees *services.EmployeeService) *AuthHandler {
	return &AuthHandler{Employees: employees}
}

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/logout", h.logout)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var input struct {
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	code := strings.TrimSpace(input.Code)
	if code == "" || input.Password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "code and password required", nil)
		return
	}
	// Deleted employees cannot log in: FindByCode filters them out, and the
	// response is indistinguishable from a wrong password.
	e, err := h.Employees.FindByCode(code)
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(e.Password), []byte(input.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	auth.CreateSession(w, e.Code)
	httpx.JSON(w, http.StatusOK, e)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
