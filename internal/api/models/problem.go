package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 error body, served as application/problem+json.
type Problem struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	TraceID  string       `json:"traceId"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError points at one invalid query parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

const problemBase = "https://airglance.dev/problems/"

// ProblemKind is the last path segment of a problem type URI. Each kind has
// a fixed title and HTTP status.
type ProblemKind string

const (
	KindValidation      ProblemKind = "validation-error"
	KindNotFound        ProblemKind = "not-found"
	KindCityNotFound    ProblemKind = "city-not-found"
	KindTooManyRequests ProblemKind = "too-many-requests"
	KindTLSRequired     ProblemKind = "tls-required"
	KindInternal        ProblemKind = "internal-error"
	KindUnavailable     ProblemKind = "service-unavailable"
	KindUpstream        ProblemKind = "upstream-unavailable"
)

var problemKinds = map[ProblemKind]struct {
	title  string
	status int
}{
	KindValidation:      {"Validation error", http.StatusBadRequest},
	KindNotFound:        {"Not found", http.StatusNotFound},
	KindCityNotFound:    {"City not found", http.StatusNotFound},
	KindTooManyRequests: {"Too many requests", http.StatusTooManyRequests},
	KindTLSRequired:     {"TLS required", http.StatusForbidden},
	KindInternal:        {"Internal server error", http.StatusInternalServerError},
	KindUnavailable:     {"Service unavailable", http.StatusServiceUnavailable},
	KindUpstream:        {"Upstream provider unavailable", http.StatusServiceUnavailable},
}

// TypeURI returns the problem type URI for k.
func (k ProblemKind) TypeURI() string {
	return problemBase + string(k)
}

// Status returns the HTTP status for k. Unknown kinds map to 500.
func (k ProblemKind) Status() int {
	if info, ok := problemKinds[k]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// NewProblem builds a problem of the given kind.
func NewProblem(kind ProblemKind, traceID, detail string) *Problem {
	info, ok := problemKinds[kind]
	if !ok {
		kind = KindInternal
		info = problemKinds[KindInternal]
	}
	return &Problem{
		Type:    kind.TypeURI(),
		Title:   info.title,
		Status:  info.status,
		Detail:  detail,
		TraceID: traceID,
	}
}

// WithErrors attaches field errors.
func (p *Problem) WithErrors(errs []FieldError) *Problem {
	p.Errors = errs
	return p
}

// Write sends p with its status code. The trace id doubles as the
// X-Request-Id response header.
func (p *Problem) Write(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		h.Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
