package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"medray-api/pkg/response"

	"github.com/sirupsen/logrus"
)

// Recovery turns a handler panic into a generic 500. The panic value and
// stack only go to the log.
func Recovery(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					var stack [4096]byte
					n := runtime.Stack(stack[:], false)

					log.WithFields(logrus.Fields{
						"method": r.Method,
						"path":   r.URL.Path,
						"panic":  fmt.Sprintf("%v", rec),
						"stack":  string(stack[:n]),
					}).Error("Panic recovered")

					response.InternalServerError(w, "")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
