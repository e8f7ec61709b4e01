package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sagarc03/signet"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string        `json:"error"`
	Message string        `json:"message"`
	Fields  []FieldDetail `json:"fields,omitempty"`
}

// FieldDetail carries per-field validation failure detail.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// WriteValidationError writes a 422 with structured per-field detail.
func WriteValidationError(w http.ResponseWriter, errs validator.ValidationErrors) {
	fields := make([]FieldDetail, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, FieldDetail{
			Field:   fe.Field(),
			Message: "failed validation: " + fe.Tag(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   "validation_error",
		Message: "Request validation failed",
		Fields:  fields,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes the appropriate error response based on error type.
// SDK-level detail has already been logged at the component boundary; the
// messages here are deliberately generic.
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "error", err)

	var missing *MissingHeaderError
	if errors.As(err, &missing) {
		WriteError(w, http.StatusBadRequest, "missing_header", "Missing required header: "+missing.Header)
		return
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		WriteValidationError(w, verrs)
		return
	}

	switch {
	case errors.Is(err, ErrNotAuthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteError(w, http.StatusUnauthorized, "not_authenticated", "Not authenticated")
	case errors.Is(err, signet.ErrInvalidToken), errors.Is(err, signet.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Could not validate credentials")
	case errors.Is(err, signet.ErrBucketNotSpecified):
		WriteError(w, http.StatusBadRequest, "bucket_not_specified", "Bucket name not specified in settings or request.")
	case errors.Is(err, signet.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid request")
	case errors.Is(err, signet.ErrBrokerFailed):
		WriteError(w, http.StatusBadRequest, "broker_error", "Failed to obtain temporary credentials")
	case errors.Is(err, signet.ErrPresignFailed):
		WriteError(w, http.StatusInternalServerError, "presign_error", "Failed to generate presigned request")
	case errors.Is(err, signet.ErrListFailed):
		WriteError(w, http.StatusInternalServerError, "list_error", "Failed to list bucket objects")
	case errors.Is(err, signet.ErrMisconfigured):
		WriteError(w, http.StatusInternalServerError, "misconfigured", "Server misconfigured")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
