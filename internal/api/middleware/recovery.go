package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/hlog"

	"github.com/airglance/airglance/internal/api/models"
)

// Recovery turns a handler panic into a 500 problem response. Aborted
// handlers (http.ErrAbortHandler) are re-panicked for net/http to handle.
// It logs through the request logger, so it must run after Logger.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			hlog.FromRequest(r).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")

			writeProblem(w, r, models.KindInternal, "an unexpected error occurred")
		}()

		next.ServeHTTP(w, r)
	})
}
