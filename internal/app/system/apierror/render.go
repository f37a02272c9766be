// internal/app/system/apierror/render.go
package apierror

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// errBody is the JSON error envelope. Matches the shape ({success:false,
// message}) SPA clients key their toast handling on.
type errBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorLogger renders domain errors as JSON and logs server-side causes.
// Handlers hold one and hand it every error path so status mapping and
// logging stay in one place.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger on the given zap logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Respond maps err to its HTTP status and writes the JSON error envelope.
// Internal causes are logged, never sent to the client.
func (e *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, err error) {
	ae := From(err)

	switch ae.Kind {
	case KindServer:
		e.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(ae.Err))
	case KindAuthorization:
		e.log.Warn("request forbidden",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ae.Kind.Status())
	_ = json.NewEncoder(w).Encode(errBody{Success: false, Message: ae.Message})
}

// ServerError logs msg with the cause and responds with the generic 500
// envelope. Convenience for store-call failure paths.
func (e *ErrorLogger) ServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	e.log.Error(msg,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(errBody{Success: false, Message: "Something went wrong. Please try again."})
}
