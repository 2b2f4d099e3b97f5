package middleware

import (
	"net/http"

	"github.com/airglance/airglance/internal/api/models"
)

func writeProblem(w http.ResponseWriter, r *http.Request, kind models.ProblemKind, detail string) {
	p := models.NewProblem(kind, GetRequestID(r.Context()), detail)
	p.Instance = r.URL.Path
	p.Write(w)
}
