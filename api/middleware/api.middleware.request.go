// FilePath: api/middleware/api.middleware.request.go
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/logging"
	nuts "github.com/vaudience/go-nuts"
)

const RequestIDHeader = "X-Request-ID"

const requestIDContextKey contextKey = "request_id"

// RequestRecorder counts served requests. monitoring.Service implements it.
type RequestRecorder interface {
	RecordRequest(method string, status int)
}

// RequestID tags every request with an id, reusing the caller's
// X-Request-ID when present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = nuts.NID("req", 12)
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the id assigned by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// AccessLog logs each request and counts it on recorder, which may be nil.
func AccessLog(recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logging.WithRequestID(RequestIDFrom(r.Context())).Debugw("[API] request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
			if recorder != nil {
				recorder.RecordRequest(r.Method, rec.status)
			}
		})
	}
}

// WriteError renders err as a JSON APIError carrying the request id.
// Errors that are not APIErrors are reported as internal errors.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := errors.Wrap(err, "internal server error")
	requestID := RequestIDFrom(r.Context())

	// Never mutate an error value that may be shared.
	out := *apiErr
	out.RequestID = requestID

	log := logging.WithRequestID(requestID)
	if out.Code >= http.StatusInternalServerError {
		log.Errorf("[API] %s %s: %v", r.Method, r.URL.Path, apiErr)
	} else {
		log.Infof("[API] %s %s: %v", r.Method, r.URL.Path, apiErr)
	}

	WriteJSON(w, out.Code, &out)
}

// WriteJSON writes payload with the given status code.
func WriteJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.L.Warnf("[API] Failed to encode response: %v", err)
	}
}
