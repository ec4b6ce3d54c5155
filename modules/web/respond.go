package web

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// MissingEnv reports which configuration variables an endpoint needs but
// does not have. Deployments with partial configuration get a diagnosable
// response instead of an opaque failure.
func MissingEnv(w http.ResponseWriter, missing []string) {
	JSON(w, http.StatusBadRequest, map[string]any{
		"error":   "missing_env",
		"missing": missing,
	})
}

// MethodNotAllowed is a chi MethodNotAllowed handler with a JSON body.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusMethodNotAllowed, "method not allowed")
}
