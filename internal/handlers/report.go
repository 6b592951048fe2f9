package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/tkhr-dev/nippo/httpx"
	"github.com/tkhr-dev/nippo/internal/models"
	"github.com/tkhr-dev/nippo/internal/services"
	"github.com/tkhr-dev/nippo/validation"
)

const dateLayout = "2006-01-02"

type ReportHandler struct {
	Reports   *services.ReportService
	Employees *services.EmployeeService
}

func NewReportHandler(reports *services.ReportService, employees *services.EmployeeService) *ReportHandler {
	return &ReportHandler{Reports: reports, Employees: employees}
}

type reportInput struct {
	ReportDate string `json:"report_date"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

// parse decodes and validates the report form fields. Presence checks happen
// here; the date-uniqueness rule belongs to the service.
func (h *ReportHandler) parse(w http.ResponseWriter, r *http.Request) (services.ReportInput, bool) {
	var input reportInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return services.ReportInput{}, false
	}
	v := validation.Violations{}
	validation.Required("report_date", input.ReportDate, v)
	validation.Required("title", input.Title, v)
	validation.MaxLen("title", input.Title, 100, v)
	validation.Required("content", input.Content, v)
	validation.MaxLen("content", input.Content, 600, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return services.ReportInput{}, false
	}
	date, err := time.Parse(dateLayout, input.ReportDate)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
		return services.ReportInput{}, false
	}
	return services.ReportInput{ReportDate: date, Title: input.Title, Content: input.Content}, true
}

func idParam(r *http.Request) (uint, bool) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// List is role-scoped: administrators see every active report, general
// employees only their own.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	acting, ok := actingEmployee(r, h.Employees)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var (
		reports []models.Report
		err     error
	)
	if acting.IsAdmin() {
		reports, err = h.Reports.FindAll()
	} else {
		reports, err = h.Reports.FindByEmployee(acting.Code)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": reports, "total": len(reports)})
}

func (h *ReportHandler) Detail(w http.ResponseWriter, r *http.Request) {
	acting, ok := actingEmployee(r, h.Employees)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	report, err := h.Reports.FindByID(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	// Someone else's report reads as not found for general employees.
	if !acting.IsAdmin() && report.EmployeeCode != acting.Code {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	acting, ok := actingEmployee(r, h.Employees)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	in, ok := h.parse(w, r)
	if !ok {
		return
	}
	report, err := h.Reports.Save(in, acting)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, report)
}

func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	acting, ok := actingEmployee(r, h.Employees)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	in, ok := h.parse(w, r)
	if !ok {
		return
	}
	report, err := h.Reports.Update(id, in, acting)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	acting, ok := actingEmployee(r, h.Employees)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	// Ownership gate before the destructive call; admins may remove any report.
	report, err := h.Reports.FindByID(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !acting.IsAdmin() && report.EmployeeCode != acting.Code {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err := h.Reports.Delete(id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
