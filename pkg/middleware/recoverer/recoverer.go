// Package recoverer provides a middleware that turns handler panics into
// a logged JSON 500 response.
package recoverer

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/render"
)

// Middleware wraps an http.Handler.
type Middleware = func(next http.Handler) http.Handler

type errorResponse struct {
	Error string `json:"error"`
}

var serverErrorResponse = errorResponse{Error: "internal server error"}

// New returns a Middleware that recovers from panics, logs them with the
// stack trace and responds with a JSON 500.
func New(logger *slog.Logger) Middleware {
	const op = "middleware.recoverer.New"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.Error(
					"something went wrong, panic occurred",
					slog.Group(op,
						slog.Any("err", rvr),
						slog.String("stack", string(debug.Stack())),
					),
				)

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, serverErrorResponse)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
