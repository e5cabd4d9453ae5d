package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/solidity"
	"github.com/consensys/gnark/constraint"
	"github.com/rs/zerolog/log"

	"github.com/wtf-protocol/helpers/sandwich"
	"github.com/wtf-protocol/helpers/utils"
)

// Global variables to store the circuit and proving key
var (
	cs constraint.ConstraintSystem
	pk groth16.ProvingKey
)

// ProofRequest represents the request body for the /proof endpoint
type ProofRequest struct {
	ParamsRequest
	Claim string `json:"claim"`
}

// ProofResponse represents the response body for the /proof endpoint
type ProofResponse struct {
	Proof    string            `json:"proof"`
	Sandwich sandwich.Sandwich `json:"sandwich"`
}

// LoadCircuitAndProvingKey loads the sandwich circuit and its proving key from files
func LoadCircuitAndProvingKey(circuitPath, pkPath string) error {
	circuit, err := os.ReadFile(circuitPath)
	if err != nil {
		return fmt.Errorf("failed to read circuit file: %w", err)
	}

	cs = groth16.NewCS(ecc.BN254)
	if err := utils.Deserialize(cs, circuit); err != nil {
		return err
	}

	pkBytes, err := os.ReadFile(pkPath)
	if err != nil {
		return fmt.Errorf("failed to read proving key file: %w", err)
	}

	pk = groth16.NewProvingKey(ecc.BN254)
	if err := utils.Deserialize(pk, pkBytes); err != nil {
		return err
	}

	log.Info().Msg("Successfully loaded circuit and proving key")
	return nil
}

// HandleProofRequest handles the /proof endpoint
func HandleProofRequest(w http.ResponseWriter, r *http.Request) {
	// Only allow POST method
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if cs == nil || pk == nil {
		http.Error(w, "Prover not configured", http.StatusServiceUnavailable)
		return
	}

	// Parse the request body
	var req ProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	kind := sandwich.ClaimID
	if req.Claim != "" {
		var err error
		if kind, err = sandwich.ParseClaimKind(req.Claim); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	params, ok := buildParams(w, r, req.ParamsRequest)
	if !ok {
		return
	}

	s := params.Sandwiches()[kind-sandwich.ClaimID]
	if !s.Found() {
		http.Error(w, s.Err.Error(), http.StatusUnprocessableEntity)
		return
	}

	proofBytes, err := generateProof(params.Token().Payload.Decoded, s)
	if err != nil {
		log.Error().Err(err).Msg("Error generating proof")
		http.Error(w, "Failed to generate proof", http.StatusInternalServerError)
		return
	}

	// Return the proof
	response := ProofResponse{
		Proof:    base64.RawURLEncoding.EncodeToString(proofBytes),
		Sandwich: s,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// generateProof proves that the sandwich sits at its offset in the payload
func generateProof(payload []byte, s sandwich.Sandwich) ([]byte, error) {
	_, witness, err := utils.GenerateSandwichWitness(payload, s.Value, s.Range.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to generate witness: %w", err)
	}

	proof, err := groth16.Prove(cs, pk, witness, solidity.WithProverTargetSolidityVerifier(backend.GROTH16))
	if err != nil {
		return nil, fmt.Errorf("failed to generate proof: %w", err)
	}

	proofBytes, err := utils.Serialize(proof)
	if err != nil {
		return nil, err
	}

	return proofBytes, nil
}
