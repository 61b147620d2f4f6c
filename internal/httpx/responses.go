package httpx

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"bookcatalog/internal/logging"
)

// MsgServerError is the only detail a client sees for a server-side failure.
const MsgServerError = "Server error. Please contact support."

type ErrorResponse struct {
	Message   string        `json:"message"`
	Code      string        `json:"code,omitempty"`
	Details   []ErrorDetail `json:"details,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	// Tag is the failing validation rule, for handlers that pick their own message.
	Tag string `json:"-"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.L().Warn().Err(err).Msg("encode response")
	}
}

func JSONOK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

func JSONCreated(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

func JSONMessage(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageResponse{Message: message})
}

// JSONError writes an error body tagged with the request id.
func JSONError(w http.ResponseWriter, r *http.Request, status int, code, message string, details []ErrorDetail) {
	JSON(w, status, ErrorResponse{
		Message:   message,
		Code:      code,
		Details:   details,
		RequestID: RequestIDFrom(r),
	})
}

// BadRequest is the common 400 with a client-facing message.
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", message, nil)
}

func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	JSONError(w, r, http.StatusNotFound, "NOT_FOUND", message, nil)
}

// ServerError logs err against the request and answers with the generic 500.
func ServerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Str("op", op).Msg("request failed")
	JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", MsgServerError, nil)
}

// DecodeJSON reads a JSON request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return io.EOF
	}
	return json.NewDecoder(r.Body).Decode(dst)
}
