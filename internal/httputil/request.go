package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"storm/internal/config"
)

// ParseJSON decodes JSON from the request body into the given destination.
// It limits the request body size to prevent abuse and provides clear error messages.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	// Limit request body (requires w for proper 413 response)
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxDocumentBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// PathID returns the {id} path wildcard
func PathID(r *http.Request) string {
	return r.PathValue("id")
}

// QueryOptional returns a query parameter, or nil when it is absent or empty
func QueryOptional(r *http.Request, name string) *string {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil
	}
	return &value
}
