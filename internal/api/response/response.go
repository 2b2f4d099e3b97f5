// Package response writes JSON and problem+json bodies.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/airglance/airglance/internal/api/middleware"
	"github.com/airglance/airglance/internal/api/models"
)

// JSON writes data with status. A nil data writes headers only.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	h := w.Header()
	if id := middleware.GetRequestID(r.Context()); id != "" {
		h.Set(middleware.RequestIDHeader, id)
	}
	h.Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// CacheFor sets a public Cache-Control max-age. Call it before JSON.
func CacheFor(w http.ResponseWriter, maxAge time.Duration) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge/time.Second)))
}

// Problem writes an RFC 7807 body of the given kind for this request.
func Problem(w http.ResponseWriter, r *http.Request, kind models.ProblemKind, detail string) {
	write(w, r, models.NewProblem(kind, middleware.GetRequestID(r.Context()), detail))
}

// BadRequest writes a validation problem listing the offending fields.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errs []models.FieldError) {
	p := models.NewProblem(models.KindValidation, middleware.GetRequestID(r.Context()), detail)
	write(w, r, p.WithErrors(errs))
}

func write(w http.ResponseWriter, r *http.Request, p *models.Problem) {
	p.Instance = r.URL.Path
	p.Write(w)
}
