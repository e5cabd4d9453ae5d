package main

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/wtf-protocol/helpers/circuits"
	"github.com/wtf-protocol/helpers/markers"
	"github.com/wtf-protocol/helpers/sandwich"
	"github.com/wtf-protocol/helpers/utils"
)

func main() {
	fmt.Println("Building verification params...")
	params := buildParams()
	fmt.Printf("Message: %s\n", params.Message)
	fmt.Printf("Hashed message: %s\n", params.HashedMessage)
	for _, s := range params.Sandwiches() {
		fmt.Printf("%s sandwich: [%d, %d) %q\n", s.Claim, s.Range.Start, s.Range.End, s.Value)
	}

	commitments, err := params.Commitments("0xC8834C1FcF0Df6623Fc8C8eD25064A4148D99388")
	if err != nil {
		panic(err)
	}
	fmt.Printf("Commitments: unbound %s, bound %s\n", commitments.Unbound, commitments.Bound)

	fmt.Println("Compiling...")
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuits.NewSandwichCircuit())
	if err != nil {
		panic(err)
	}
	fmt.Printf("Compilation done. %d constraints.\n", cs.GetNbConstraints())

	fmt.Println("Setting up Groth16 parameters...")
	pk, err := groth16.DummySetup(cs)
	if err != nil {
		panic(err)
	}
	fmt.Println("Groth16 parameters set up")

	fmt.Println("Generating witness...")
	_, witness, err := utils.GenerateSandwichWitness(
		params.Token().Payload.Decoded,
		params.IDSandwich.Value,
		params.IDSandwich.Range.Start,
	)
	if err != nil {
		panic(err)
	}
	fmt.Println("Witness generated")

	fmt.Println("Proving...")
	_, err = groth16.Prove(cs, pk, witness)
	if err != nil {
		panic(err)
	}
	fmt.Println("Proof generated")
}

func buildParams() *sandwich.VerificationParams {
	// {"alg":"RS256","kid":"c7e04465649ffa606557650c7e65f0a87ae00fe8","typ":"JWT"}
	jwtHeader := `{"alg":"RS256","kid":"c7e04465649ffa606557650c7e65f0a87ae00fe8","typ":"JWT"}`

	// {"iss":"https://accounts.google.com","aud":"wtf.example","sub":"113282815992720230663","exp":1744396626}
	jwtPayload := `{"iss":"https://accounts.google.com","aud":"wtf.example","sub":"113282815992720230663","exp":1744396626}`

	jwt := fmt.Sprintf(
		"%s.%s.%s",
		base64.RawURLEncoding.EncodeToString([]byte(jwtHeader)),
		base64.RawURLEncoding.EncodeToString([]byte(jwtPayload)),
		base64.RawURLEncoding.EncodeToString([]byte("signature")),
	)

	source := &markers.Static{
		BottomBread:    "0x" + hex.EncodeToString([]byte(`"sub":"`)),
		TopBread:       "0x" + hex.EncodeToString([]byte(`",`)),
		ExpBottomBread: "0x" + hex.EncodeToString([]byte(`,"exp":`)),
		ExpTopBread:    "0x" + hex.EncodeToString([]byte(`}`)),
		Aud:            "0x" + hex.EncodeToString([]byte(`"aud":"wtf.example"`)),
	}

	params, err := sandwich.BuildVerificationParams(context.Background(), jwt, source, sandwich.Options{})
	if err != nil {
		panic(err)
	}

	return params
}
