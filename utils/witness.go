package utils

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/wtf-protocol/helpers/circuits"
)

// GenerateSandwichWitness builds the SandwichCircuit assignment proving that
// payload[offset:offset+len(sandwich)] equals sandwich.
func GenerateSandwichWitness(
	payload []byte,
	sandwich []byte,
	offset int,
) (assignment *circuits.SandwichCircuit, w witness.Witness, err error) {
	if len(payload) > circuits.MaxPayloadLen {
		return nil, nil, fmt.Errorf("invalid payload length: %d (max %d)", len(payload), circuits.MaxPayloadLen)
	}
	if len(sandwich) > circuits.MaxSandwichLen {
		return nil, nil, fmt.Errorf("invalid sandwich length: %d (max %d)", len(sandwich), circuits.MaxSandwichLen)
	}
	if offset < 0 || offset+len(sandwich) > len(payload) {
		return nil, nil, fmt.Errorf("invalid sandwich offset: %d (payload length %d, sandwich length %d)", offset, len(payload), len(sandwich))
	}

	assignment = &circuits.SandwichCircuit{
		// Public inputs.
		Sandwich:    buildWitnessU8Slice(sandwich, circuits.MaxSandwichLen),
		SandwichLen: len(sandwich),
		Offset:      offset,

		// Private inputs.
		Payload: buildWitnessU8Slice(payload, circuits.MaxPayloadLen),
	}

	w, err = frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create witness: %w", err)
	}

	return
}

func buildWitnessU8Slice(value []byte, maxLen int) (witness []uints.U8) {
	witness = make([]uints.U8, maxLen)
	for i := range witness {
		witness[i] = uints.NewU8(0)
	}
	for i := range value {
		witness[i] = uints.NewU8(value[i])
	}

	return
}
