package utils

import (
	"encoding/json"
	"net/http"

	"storefront/apperr"
)

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"error": msg})
}

// RespondWithAppError writes err using its kind's status code.
func RespondWithAppError(w http.ResponseWriter, err error) {
	e := apperr.As(err)
	body := M{"error": e.Message, "kind": e.Kind}
	if e.Retryable {
		body["retryable"] = true
	}
	RespondWithJSON(w, e.Status(), body)
}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// RespondWithFile sends body as a download named filename.
func RespondWithFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// DecodeJSON limits the body to 1 MB.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(v)
}

type M map[string]interface{}
