package runtime

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/harshkrt/FinAgent/shared/application/ports"
)

// withRecovery turns a panic in next into a 500 internal-error response.
func withRecovery(logger ports.Logger, metrics ports.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(resWriter http.ResponseWriter, request *http.Request) {
		defer func() {
			if r := recover(); r != nil {
				if r == http.ErrAbortHandler {
					panic(r)
				}
				id := request.Header.Get(requestIDHeader)
				logger.Error("Panic recovered",
					"request_id", id,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()))
				metrics.IncrementCounter("http.panics", nil)

				_ = writeJSON(resWriter, http.StatusInternalServerError, errorResponse{
					Error:     "An internal error occurred",
					Reason:    reasonInternal,
					RequestID: id,
				})
			}
		}()

		next.ServeHTTP(resWriter, request)
	})
}

// withRequestID echoes the caller's X-Request-ID, or a new one, on the
// request and the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(resWriter http.ResponseWriter, request *http.Request) {
		id := requestID(request.Header)
		request.Header.Set(requestIDHeader, id)
		resWriter.Header().Set(requestIDHeader, id)
		next.ServeHTTP(resWriter, request)
	})
}
