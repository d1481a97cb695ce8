package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/expense-reports/internal"
	"github.com/frahmantamala/expense-reports/pkg/logger"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response for failures that happen before the
// service layer is reached, such as malformed bodies or path parameters.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Warn("http error", "status", status, "message", message)

	var appErr *errors.AppError
	switch status {
	case http.StatusBadRequest:
		appErr = errors.NewValidationError(message, errors.ErrCodeValidationFailed)
	case http.StatusNotFound:
		appErr = errors.NewNotFoundError(message, "NOT_FOUND")
	case http.StatusUnauthorized:
		appErr = errors.NewUnauthorizedError(message, errors.ErrCodeUnauthenticated)
	default:
		appErr = errors.NewInternalError(message, nil)
		appErr.StatusCode = status
	}
	h.writeAppError(w, appErr)
}

// HandleServiceError maps AppErrors to their status and JSON body. Anything
// else is an internal error whose cause stays in the logs, tagged with the
// request's trace id.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	lg := logger.Bind(r.Context(), h.Logger)
	if appErr, ok := errors.IsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			lg.Error("internal error", "error", err, "path", r.URL.Path)
		}
		h.writeAppError(w, appErr)
		return
	}

	lg.Error("unhandled service error", "error", err, "path", r.URL.Path)
	h.writeAppError(w, errors.NewInternalError("internal server error", err))
}

func (h *BaseHandler) writeAppError(w http.ResponseWriter, appErr *errors.AppError) {
	status, body := appErr.ToHTTPResponse()
	if status == 0 {
		status = http.StatusInternalServerError
	}
	h.WriteJSON(w, status, body)
}

// Pagination reads limit/offset query params, clamping limit to (0, 100].
func (h *BaseHandler) Pagination(r *http.Request) (limit, offset int) {
	limit = 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}
