package health

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Flags reports which configuration values are present. Only booleans leave
// the process; secret values never appear here.
type Flags struct {
	MerchantID      bool `json:"merchantId"`
	SaltKey         bool `json:"saltKey"`
	CallbackBaseURL bool `json:"callbackBaseUrl"`
}

// Handler exposes the health endpoint.
type Handler struct {
	Environment     string
	MerchantID      string
	SaltKey         string
	CallbackBaseURL string
}

// Check reports process health and configuration presence.
func (h Handler) Check(w http.ResponseWriter, _ *http.Request) {
	status := map[string]any{
		"status":      "ok",
		"environment": h.Environment,
		"flags": Flags{
			MerchantID:      strings.TrimSpace(h.MerchantID) != "",
			SaltKey:         strings.TrimSpace(h.SaltKey) != "",
			CallbackBaseURL: strings.TrimSpace(h.CallbackBaseURL) != "",
		},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(status)
}
