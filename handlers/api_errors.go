package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// WriteJSON writes v as a JSON response with the given HTTP status.
func WriteJSON(w http.ResponseWriter, httpStatus int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to encode JSON response")
	}
}

// WriteAPIError writes the standard error body, {"error": detail}, with the
// given HTTP status.
func WriteAPIError(w http.ResponseWriter, httpStatus int, detail string) {
	WriteJSON(w, httpStatus, map[string]string{"error": detail})
}
