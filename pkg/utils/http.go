package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

func WriteJSON(w http.ResponseWriter, payload any, code int) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(payload)
}

func DecodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// ErrorResponse describes a standard error response
// swagger:model ErrorResponse
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Details   []string  `json:"details,omitempty"`
}

func WriteError(w http.ResponseWriter, r *http.Request, kind, message string, code int) error {
	return WriteJSON(w, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    code,
		Error:     kind,
		Message:   message,
		Path:      r.URL.Path,
	}, code)
}

// WriteValidationError перечисляет все нарушения полей одним ответом
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) error {
	res := ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    http.StatusBadRequest,
		Error:     "Validation Failed",
		Message:   "invalid request",
		Path:      r.URL.Path,
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			res.Details = append(res.Details, fe.Field()+": "+fe.Tag())
		}
	}

	return WriteJSON(w, res, http.StatusBadRequest)
}
