package common

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithDomainError maps err to a status code and writes it out. Internal
// errors keep their detail only when verbose is set (development mode).
func RespondWithDomainError(w http.ResponseWriter, err error, verbose bool) {
	code := HTTPStatusFromError(err)
	message := err.Error()
	if code == http.StatusInternalServerError && !verbose {
		message = "an unexpected error occurred"
	}
	RespondWithError(w, code, message)
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
