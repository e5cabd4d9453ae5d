package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/wtf-protocol/helpers/commitment"
)

// CommitmentsRequest represents the request body for the /commitments endpoint
type CommitmentsRequest struct {
	Address string `json:"address"`
	Message string `json:"message"`
	Scheme  string `json:"scheme,omitempty"`
}

// HandleCommitmentsRequest handles the /commitments endpoint
func HandleCommitmentsRequest(w http.ResponseWriter, r *http.Request) {
	// Only allow POST method
	if r.Method != http.MethodPost {
		log.Warn().Str("method", r.Method).Msg("Method not allowed")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse the request body
	var req CommitmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Error decoding request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	scheme := commitment.Keccak256
	if req.Scheme != "" {
		var err error
		if scheme, err = commitment.ParseScheme(req.Scheme); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	pair, err := commitment.GenerateWith(scheme, req.Address, []byte(req.Message))
	if err != nil {
		log.Warn().Err(err).Msg("Error generating commitments")
		http.Error(w, "Invalid address format", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pair)
}
