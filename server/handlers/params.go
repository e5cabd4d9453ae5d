package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/wtf-protocol/helpers/sandwich"
)

var markerSource sandwich.MarkerSource

// SetMarkerSource sets where /params and /proof read the verifier markers from.
func SetMarkerSource(source sandwich.MarkerSource) {
	markerSource = source
}

// ParamsRequest represents the request body for the /params endpoint
type ParamsRequest struct {
	Jwt             string `json:"jwt"`
	IDField         string `json:"id_field,omitempty"`
	ExpirationField string `json:"exp_field,omitempty"`
}

// HandleParamsRequest handles the /params endpoint. Sandwiches that could not
// be located are returned with null offsets and an error message.
func HandleParamsRequest(w http.ResponseWriter, r *http.Request) {
	// Only allow POST method
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse the request body
	var req ParamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params, ok := buildParams(w, r, req)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(params)
}

func buildParams(w http.ResponseWriter, r *http.Request, req ParamsRequest) (*sandwich.VerificationParams, bool) {
	if markerSource == nil {
		log.Error().Msg("No marker source configured")
		http.Error(w, "Marker source not configured", http.StatusServiceUnavailable)
		return nil, false
	}

	ctx := log.Logger.WithContext(r.Context())
	params, err := sandwich.BuildVerificationParams(ctx, req.Jwt, markerSource, sandwich.Options{
		IDField:         req.IDField,
		ExpirationField: req.ExpirationField,
	})
	if params == nil {
		log.Warn().Err(err).Msg("Error parsing JWT")
		http.Error(w, "Invalid JWT", http.StatusBadRequest)
		return nil, false
	}

	return params, true
}
