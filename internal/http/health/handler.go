// Package health answers container liveness probes for NomadSquare.
package health

import (
	"encoding/json"
	"net/http"
)

const statusHealthy = "healthy"

// Response is the liveness body.
type Response struct {
	Status string `json:"status"`
}

// Handler reports healthy once the router is serving.
func Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Response{Status: statusHealthy})
}
