package main

import (
	"context"
	"net/http"
	"os"

	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wtf-protocol/helpers/markers"
	"github.com/wtf-protocol/helpers/server/handlers"
)

// corsMiddleware adds CORS headers to the response
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:3000"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		// Set CORS headers
		w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		// Call the next handler
		next(w, r)
	}
}

func main() {
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("service", "wtf-server").Logger()
	gnarklogger.Set(log.Logger)

	if err := configureMarkerSource(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure marker source")
	}

	// The prover is optional: /proof answers 503 without it.
	if circuitPath, pkPath := os.Getenv("CIRCUIT_PATH"), os.Getenv("PROVING_KEY_PATH"); circuitPath != "" && pkPath != "" {
		if err := handlers.LoadCircuitAndProvingKey(circuitPath, pkPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to load circuit and proving key")
		}
	}

	http.HandleFunc("/params", corsMiddleware(handlers.HandleParamsRequest))
	http.HandleFunc("/commitments", corsMiddleware(handlers.HandleCommitmentsRequest))
	http.HandleFunc("/locate", corsMiddleware(handlers.HandleLocateRequest))
	http.HandleFunc("/proof", corsMiddleware(handlers.HandleProofRequest))

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info().Str("port", port).Msg("Server starting")
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}

// configureMarkerSource reads markers from MARKERS_FILE, or from the verifier
// contract at VERIFIER_ADDRESS through RPC_URL.
func configureMarkerSource(ctx context.Context) error {
	if path := os.Getenv("MARKERS_FILE"); path != "" {
		source, err := markers.LoadFile(path)
		if err != nil {
			return err
		}
		handlers.SetMarkerSource(source)
		log.Info().Str("path", path).Msg("Loaded markers file")
		return nil
	}

	rpcURL, verifier := os.Getenv("RPC_URL"), os.Getenv("VERIFIER_ADDRESS")
	if rpcURL == "" || !common.IsHexAddress(verifier) {
		log.Warn().Msg("No marker source configured, /params and /proof are disabled")
		return nil
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return err
	}

	source, err := markers.NewContract(client, common.HexToAddress(verifier))
	if err != nil {
		return err
	}
	handlers.SetMarkerSource(source)
	log.Info().Str("verifier", verifier).Msg("Reading markers from verifier contract")

	return nil
}
