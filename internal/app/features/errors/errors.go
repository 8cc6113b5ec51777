// internal/app/features/errors/errors.go
package errors

import (
	stderrors "errors"
	"net/http"

	groupstore "github.com/dalemusser/stratagroups/internal/app/store/groups"
	secretstore "github.com/dalemusser/stratagroups/internal/app/store/secrets"
	userstore "github.com/dalemusser/stratagroups/internal/app/store/users"
	"github.com/dalemusser/stratagroups/internal/domain/models"
	"go.uber.org/zap"
)

// ErrorLogger writes JSON error responses and logs the ones worth logging.
// Handlers hold one and call it instead of writing errors themselves.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// LogServerError logs err at error level and responds 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Error(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	WriteJSON(w, http.StatusInternalServerError, errorBody{Error: userMsg})
}

// LogBadRequest logs err at warn level and responds 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Warn(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	WriteJSON(w, http.StatusBadRequest, errorBody{Error: userMsg})
}

// StatusFor maps a domain or store error to its HTTP status. ok is false
// for errors that have no client-facing meaning.
func StatusFor(err error) (status int, ok bool) {
	switch {
	case models.IsAuthorization(err), models.IsDomain(err):
		return http.StatusForbidden, true
	case models.IsInvariant(err):
		return http.StatusConflict, true
	case stderrors.Is(err, groupstore.ErrConcurrentUpdate),
		stderrors.Is(err, groupstore.ErrNoOwner),
		stderrors.Is(err, userstore.ErrDuplicateEmail):
		return http.StatusConflict, true
	case stderrors.Is(err, groupstore.ErrNotFound),
		stderrors.Is(err, userstore.ErrNotFound):
		return http.StatusNotFound, true
	case stderrors.Is(err, groupstore.ErrDanglingReference),
		stderrors.Is(err, secretstore.ErrPasswordTooShort),
		stderrors.Is(err, secretstore.ErrPasswordTooLong),
		stderrors.Is(err, secretstore.ErrPasswordCommon):
		return http.StatusBadRequest, true
	}
	return 0, false
}

// HandleError responds to err. Known domain and store errors are answered
// with their own message and status; anything else is a logged 500.
func (e *ErrorLogger) HandleError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if status, ok := StatusFor(err); ok {
		e.Log.Debug(msg,
			zap.Error(err),
			zap.Int("status", status),
			zap.String("path", r.URL.Path),
		)
		WriteJSON(w, status, errorBody{Error: err.Error()})
		return
	}
	e.LogServerError(w, r, msg, err, "An internal error occurred.")
}

// Unauthorized responds 401.
func Unauthorized(w http.ResponseWriter) {
	WriteJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
}

// Forbidden responds 403 with msg.
func Forbidden(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusForbidden, errorBody{Error: msg})
}

// NotFound responds 404 with msg.
func NotFound(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusNotFound, errorBody{Error: msg})
}
