package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/tkhr-dev/nippo/auth"
	"github.com/tkhr-dev/nippo/httpx"
	"github.com/tkhr-dev/nippo/internal/handlers"
	"github.com/tkhr-dev/nippo/internal/models"
	"github.com/tkhr-dev/nippo/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	employeeSvc := services.NewEmployeeService(db)
	reportSvc := services.NewReportService(db)

	// Sessions must refer to an active employee; a soft-deleted account is
	// rejected on the next request, not at the next login.
	auth.SetEmployeeVerifier(func(_ context.Context, code string) bool {
		var count int64
		if err := db.Model(&models.Employee{}).Scopes(models.NotDeleted).
			Where("code = ?", code).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints
	authHandler := handlers.NewAuthHandler(employeeSvc)
	authHandler.Register(mux)

	// Employee administration. List/Create via /employees, the rest via
	// /employees/{detail,update,delete}?code= for mux simplicity.
	eh := handlers.NewEmployeeHandler(employeeSvc)
	mux.Handle("/employees", protected(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			eh.List(w, r)
		case http.MethodPost:
			eh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})))
	mux.Handle("/employees/detail", protected(get(eh.Detail)))
	mux.Handle("/employees/update", protected(post(eh.Update)))
	mux.Handle("/employees/delete", protected(post(eh.Delete)))

	// Report endpoints, same shape.
	rh := handlers.NewReportHandler(reportSvc, employeeSvc)
	mux.Handle("/reports", protected(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			rh.List(w, r)
		case http.MethodPost:
			rh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})))
	mux.Handle("/reports/detail", protected(get(rh.Detail)))
	mux.Handle("/reports/update", protected(post(rh.Update)))
	mux.Handle("/reports/delete", protected(post(rh.Delete)))

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, werr := w.Write([]byte("Daily Report API")); werr != nil {
			_ = werr
		}
	})

	return withRecover(withLogging(mux))
}

func protected(next http.Handler) http.Handler {
	return auth.Middleware(auth.RequireAuth(next))
}

func get(h http.HandlerFunc) http.Handler {
	return allow(http.MethodGet, h)
}

func post(h http.HandlerFunc) http.Handler {
	return allow(http.MethodPost, h)
}

func allow(method string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		h(w, r)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
