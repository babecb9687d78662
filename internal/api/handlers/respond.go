package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vv031/Stock-Market/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondGatewayError maps a gateway failure to an HTTP status, keeping the
// gateway's user-facing message
func respondGatewayError(w http.ResponseWriter, err error) {
	gwErr := contracts.AsGatewayError("", err)

	status := http.StatusBadGateway
	switch gwErr.Kind {
	case contracts.KindNetwork:
		status = http.StatusServiceUnavailable
	case contracts.KindModelUnavailable:
		status = http.StatusNotFound
	case contracts.KindServer:
		if gwErr.StatusCode >= 400 && gwErr.StatusCode < 500 {
			status = gwErr.StatusCode
		}
	}
	respondError(w, status, gwErr.Message)
}
