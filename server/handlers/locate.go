package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/wtf-protocol/helpers/locator"
	"github.com/wtf-protocol/helpers/utils"
)

// LocateRequest represents the request body for the /locate endpoint
type LocateRequest struct {
	PlaintextHex string `json:"plaintext_hex"`
	Encoded      string `json:"encoded"`
	Alphabet     string `json:"alphabet"`
}

// HandleLocateRequest handles the /locate endpoint
func HandleLocateRequest(w http.ResponseWriter, r *http.Request) {
	// Only allow POST method
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse the request body
	var req LocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	alphabet := locator.Base64URL
	if req.Alphabet != "" {
		var err error
		if alphabet, err = locator.ParseAlphabet(req.Alphabet); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	plaintext, err := utils.DecodeHex(req.PlaintextHex)
	if err != nil {
		http.Error(w, "Invalid plaintext format", http.StatusBadRequest)
		return
	}

	rng, err := locator.FindPlaintextRange(plaintext, req.Encoded, alphabet)
	if err != nil {
		var notFound *locator.NotFoundError
		if errors.As(err, &notFound) {
			http.Error(w, "Plaintext not found", http.StatusNotFound)
			return
		}
		log.Warn().Err(err).Msg("Error locating plaintext")
		http.Error(w, "Invalid encoded input", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rng)
}
