package httputil

import (
	"encoding/json"
	"net/http"

	"workfolio/internal/model"
)

// Error codes returned in the "code" field
const (
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeForbidden   = "FORBIDDEN"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeConflict    = "CONFLICT"
	ErrCodeUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

// ErrorResponse is the error body: {"error": "message", "code": "CODE"}
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Page stands in for a rendered view: the view name, the flashes drained
// for this render and the view's data.
type Page struct {
	View   string      `json:"view"`
	Infos  []string    `json:"infos"`
	Errors []string    `json:"errors"`
	Data   interface{} `json:"data,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		// Headers are already sent; nothing useful to do on failure.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WritePage writes the page envelope for view.
func WritePage(w http.ResponseWriter, status int, view string, flashes model.Flashes, data interface{}) {
	infos, errs := flashes.Infos, flashes.Errors
	if infos == nil {
		infos = []string{}
	}
	if errs == nil {
		errs = []string{}
	}
	WriteJSON(w, status, Page{View: view, Infos: infos, Errors: errs, Data: data})
}

// Redirect answers with 303 See Other so the client follows with a GET.
func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func WriteError(w http.ResponseWriter, status int, code string, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// WriteBadRequest writes a 400 Bad Request error
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// WriteBadRequestWithCode writes a 400 Bad Request error with a custom code
func WriteBadRequestWithCode(w http.ResponseWriter, code string, message string) {
	WriteError(w, http.StatusBadRequest, code, message)
}

// WriteForbidden writes a 403 and points the client back at location.
func WriteForbidden(w http.ResponseWriter, location, message string) {
	w.Header().Set("Location", location)
	WriteError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// WriteNotFound writes a 404 Not Found error
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// WriteConflict writes a 409 and points the client back at the form.
func WriteConflict(w http.ResponseWriter, location, message string) {
	w.Header().Set("Location", location)
	WriteError(w, http.StatusConflict, ErrCodeConflict, message)
}

// WriteUnavailable writes a 503 for store timeouts.
func WriteUnavailable(w http.ResponseWriter) {
	WriteError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "Service temporarily unavailable, try again")
}

// WriteInternalError writes a 500 Internal Server Error
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}
