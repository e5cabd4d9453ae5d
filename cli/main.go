package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/wtf-protocol/helpers/circuits"
	"github.com/wtf-protocol/helpers/commitment"
	"github.com/wtf-protocol/helpers/jwt"
	"github.com/wtf-protocol/helpers/locator"
	"github.com/wtf-protocol/helpers/markers"
	"github.com/wtf-protocol/helpers/sandwich"
	"github.com/wtf-protocol/helpers/utils"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

var jwtFlag = &cli.StringFlag{
	Name:     "jwt",
	Aliases:  []string{"j"},
	Usage:    "JWT, compact or as an id_token query string",
	EnvVars:  []string{"WTF_JWT"},
	Required: true,
}

var markerFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "markers",
		Aliases: []string{"m"},
		Usage:   "Path to a YAML markers file",
		EnvVars: []string{"MARKERS_FILE"},
	},
	&cli.StringFlag{
		Name:    "rpc-url",
		Usage:   "Ethereum JSON-RPC endpoint used to read markers from the verifier contract",
		EnvVars: []string{"RPC_URL"},
	},
	&cli.StringFlag{
		Name:    "verifier",
		Usage:   "Verifier contract address",
		EnvVars: []string{"VERIFIER_ADDRESS"},
	},
}

var claimFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "id-field",
		Usage: "Payload claim holding the id",
		Value: sandwich.DefaultIDField,
	},
	&cli.StringFlag{
		Name:  "exp-field",
		Usage: "Payload claim holding the expiration",
		Value: sandwich.DefaultExpirationField,
	},
}

var commands = []*cli.Command{
	{
		Name:   "parse",
		Usage:  "Decompose a JWT",
		Flags:  []cli.Flag{jwtFlag},
		Action: ParseJwt,
	},
	{
		Name:  "locate",
		Usage: "Find the byte range of a plaintext inside a base64 blob",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "plaintext",
				Aliases: []string{"p"},
				Usage:   "Plaintext to search for",
			},
			&cli.StringFlag{
				Name:  "plaintext-hex",
				Usage: "Plaintext to search for, as hex",
			},
			&cli.StringFlag{
				Name:     "encoded",
				Aliases:  []string{"e"},
				Usage:    "Encoded blob",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "alphabet",
				Usage: "base64 or base64url",
				Value: locator.Base64URL.String(),
			},
		},
		Action: LocatePlaintext,
	},
	{
		Name:  "convert",
		Usage: "Rewrite text between base64, base64url and hex forms",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Text to convert", Required: true},
			&cli.StringFlag{Name: "to", Usage: "base64, base64url, padded or text (from hex)", Required: true},
		},
		Action: ConvertText,
	},
	{
		Name:  "xor",
		Usage: "XOR two hex buffers, left padding the shorter one with zeros",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "a", Usage: "First buffer, hex", Required: true},
			&cli.StringFlag{Name: "b", Usage: "Second buffer, hex", Required: true},
		},
		Action: XorBuffers,
	},
	{
		Name:  "commit",
		Usage: "Generate the unbound and bound commitments of a message",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Aliases:  []string{"a"},
				Usage:    "Address to bind the message to",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "message",
				Usage:    "Message to commit to",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "scheme",
				Usage: "keccak256 or poseidon",
				Value: commitment.Keccak256.String(),
			},
		},
		Action: GenerateCommitments,
	},
	{
		Name:   "params",
		Usage:  "Build the verifier contract parameters for a JWT",
		Flags:  append(append([]cli.Flag{jwtFlag}, claimFlags...), markerFlags...),
		Action: BuildParams,
	},
	{
		Name:  "compile",
		Usage: "Compile the sandwich circuit",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Output path for the compiled circuit",
				Required: true,
			},
		},
		Action: CompileCircuit,
	},
	{
		Name:  "setup",
		Usage: "Run the setup ceremony",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "circuit",
				Aliases:  []string{"c"},
				Usage:    "Path to the circuit file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "proving-key",
				Aliases:  []string{"pk"},
				Usage:    "Output path for the proving key",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "verification-key",
				Aliases:  []string{"vk"},
				Usage:    "Output path for the verification key",
				Required: true,
			},
		},
		Action: SetupCircuit,
	},
	{
		Name:  "contract",
		Usage: "Generate the Solidity verifier contract",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "verification-key",
				Aliases:  []string{"vk"},
				Usage:    "Path to the verification key",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Output path for the Solidity verifier contract",
				Required: true,
			},
		},
		Action: GenerateContract,
	},
	{
		Name:  "prove",
		Usage: "Prove that a claim's sandwich sits at its offset in the JWT payload",
		Flags: append(append([]cli.Flag{
			jwtFlag,
			&cli.StringFlag{
				Name:     "circuit",
				Aliases:  []string{"c"},
				Usage:    "Path to the circuit file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "proving-key",
				Aliases:  []string{"pk"},
				Usage:    "Path to the proving key",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "claim",
				Usage: "Sandwich to prove: id, exp or aud",
				Value: sandwich.ClaimID.String(),
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Output path for the proof file",
				Required: true,
			},
		}, claimFlags...), markerFlags...),
		Action: GenerateProof,
	},
}

func main() {
	gnarklogger.Set(log)

	app := &cli.App{
		Name:     "wtf-cli",
		Usage:    "WTF protocol JWT helpers",
		Commands: commands,
	}

	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func ParseJwt(cCtx *cli.Context) error {
	token, err := jwt.Parse(cCtx.String("jwt"))
	if err != nil {
		return err
	}

	return printJSON(map[string]any{
		"header": map[string]any{
			"raw":    token.Header.Raw,
			"parsed": token.Header.Claims,
		},
		"payload": map[string]any{
			"raw":    token.Payload.Raw,
			"parsed": token.Payload.Claims,
		},
		"signature": map[string]any{
			"raw":     token.Signature.Raw,
			"decoded": hexutil.Encode(token.Signature.Decoded),
		},
		"message":           token.Message(),
		"payloadByteOffset": token.PayloadByteOffset(),
	})
}

func LocatePlaintext(cCtx *cli.Context) error {
	alphabet, err := locator.ParseAlphabet(cCtx.String("alphabet"))
	if err != nil {
		return err
	}

	plaintext := []byte(cCtx.String("plaintext"))
	if cCtx.IsSet("plaintext-hex") {
		if plaintext, err = utils.DecodeHex(cCtx.String("plaintext-hex")); err != nil {
			return err
		}
	}

	r, err := locator.FindPlaintextRange(plaintext, cCtx.String("encoded"), alphabet)
	if err != nil {
		return err
	}

	return printJSON(r)
}

func ConvertText(cCtx *cli.Context) error {
	in := cCtx.String("input")

	var out string
	var err error
	switch to := cCtx.String("to"); to {
	case "base64":
		out = utils.ToBase64(in)
	case "base64url":
		out = utils.ToBase64URL(in)
	case "padded":
		out, err = utils.PadBase64(utils.ToBase64(in))
	case "text":
		out, err = utils.HexToString(in)
	default:
		err = &utils.UnrecognizedOptionError{Option: "target", Value: to}
	}
	if err != nil {
		return err
	}

	fmt.Println(out)
	return nil
}

func XorBuffers(cCtx *cli.Context) error {
	a, err := utils.DecodeHex(cCtx.String("a"))
	if err != nil {
		return err
	}
	b, err := utils.DecodeHex(cCtx.String("b"))
	if err != nil {
		return err
	}

	fmt.Println(hexutil.Encode(utils.FixedXOR(a, b)))
	return nil
}

func GenerateCommitments(cCtx *cli.Context) error {
	scheme, err := commitment.ParseScheme(cCtx.String("scheme"))
	if err != nil {
		return err
	}

	pair, err := commitment.GenerateWith(scheme, cCtx.String("address"), []byte(cCtx.String("message")))
	if err != nil {
		return err
	}

	return printJSON(pair)
}

func BuildParams(cCtx *cli.Context) error {
	ctx := log.WithContext(cCtx.Context)

	params, err := buildParams(ctx, cCtx)
	if params == nil {
		return err
	}

	// Claims that failed to align are reported in the output and the log.
	if err != nil {
		log.Warn().Err(err).Msg("some sandwiches could not be located")
	}

	return printJSON(params)
}

func buildParams(ctx context.Context, cCtx *cli.Context) (*sandwich.VerificationParams, error) {
	source, err := markerSource(ctx, cCtx)
	if err != nil {
		return nil, err
	}

	return sandwich.BuildVerificationParams(ctx, cCtx.String("jwt"), source, sandwich.Options{
		IDField:         cCtx.String("id-field"),
		ExpirationField: cCtx.String("exp-field"),
	})
}

func markerSource(ctx context.Context, cCtx *cli.Context) (sandwich.MarkerSource, error) {
	if path := cCtx.String("markers"); path != "" {
		return markers.LoadFile(path)
	}

	rpcURL, verifier := cCtx.String("rpc-url"), cCtx.String("verifier")
	if rpcURL == "" || verifier == "" {
		return nil, fmt.Errorf("either --markers or both --rpc-url and --verifier are required")
	}
	if !common.IsHexAddress(verifier) {
		return nil, fmt.Errorf("invalid verifier address: %s", verifier)
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}

	return markers.NewContract(client, common.HexToAddress(verifier))
}

func CompileCircuit(cCtx *cli.Context) error {
	log.Info().Msg("Compiling circuit...")
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuits.NewSandwichCircuit())
	if err != nil {
		return fmt.Errorf("failed to compile circuit: %w", err)
	}
	log.Info().Int("constraints", cs.GetNbConstraints()).Msg("Compilation done")

	buf, err := utils.Serialize(cs)
	if err != nil {
		return err
	}

	outputPath := cCtx.String("output")
	if err := os.WriteFile(outputPath, buf, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log.Info().Str("path", outputPath).Msg("Successfully wrote compiled circuit")

	return nil
}

func SetupCircuit(cCtx *cli.Context) error {
	circuit, err := os.ReadFile(cCtx.String("circuit"))
	if err != nil {
		return fmt.Errorf("failed to read circuit file: %w", err)
	}

	cs := groth16.NewCS(ecc.BN254)
	if err := utils.Deserialize(cs, circuit); err != nil {
		return err
	}

	log.Info().Msg("Running setup ceremony...")
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return fmt.Errorf("failed to setup circuit: %w", err)
	}

	pkPath := cCtx.String("pk")
	pkBuf, err := utils.Serialize(pk)
	if err != nil {
		return err
	}
	if err := os.WriteFile(pkPath, pkBuf, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log.Info().Str("path", pkPath).Msg("Successfully wrote proving key")

	vkPath := cCtx.String("vk")
	vkBuf, err := utils.Serialize(vk)
	if err != nil {
		return err
	}
	if err := os.WriteFile(vkPath, vkBuf, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log.Info().Str("path", vkPath).Msg("Successfully wrote verification key")

	return nil
}

func GenerateContract(cCtx *cli.Context) error {
	vkBytes, err := os.ReadFile(cCtx.String("vk"))
	if err != nil {
		return fmt.Errorf("failed to read verification key file: %w", err)
	}

	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := utils.Deserialize(vk, vkBytes); err != nil {
		return err
	}

	f, err := os.Create(cCtx.String("output"))
	if err != nil {
		return fmt.Errorf("failed to create contract file: %w", err)
	}
	defer f.Close()

	if err := vk.ExportSolidity(f); err != nil {
		return fmt.Errorf("failed to export contract: %w", err)
	}
	log.Info().Str("path", cCtx.String("output")).Msg("Successfully wrote contract")

	return nil
}

func GenerateProof(cCtx *cli.Context) error {
	ctx := log.WithContext(cCtx.Context)

	kind, err := sandwich.ParseClaimKind(cCtx.String("claim"))
	if err != nil {
		return err
	}

	log.Info().Msg("Processing JWT...")
	params, err := buildParams(ctx, cCtx)
	if params == nil {
		return err
	}

	s := params.Sandwiches()[kind-sandwich.ClaimID]
	if !s.Found() {
		return s.Err
	}

	log.Info().Msg("Generating witness...")
	_, witness, err := utils.GenerateSandwichWitness(params.Token().Payload.Decoded, s.Value, s.Range.Start)
	if err != nil {
		return fmt.Errorf("failed to generate witness: %w", err)
	}

	circuit, err := os.ReadFile(cCtx.String("circuit"))
	if err != nil {
		return fmt.Errorf("failed to read circuit file: %w", err)
	}
	cs := groth16.NewCS(ecc.BN254)
	if err := utils.Deserialize(cs, circuit); err != nil {
		return err
	}

	pkBytes, err := os.ReadFile(cCtx.String("pk"))
	if err != nil {
		return fmt.Errorf("failed to read proving key file: %w", err)
	}
	pk := groth16.NewProvingKey(ecc.BN254)
	if err := utils.Deserialize(pk, pkBytes); err != nil {
		return err
	}

	log.Info().Stringer("claim", kind).Msg("Generating proof...")
	proof, err := groth16.Prove(cs, pk, witness)
	if err != nil {
		return fmt.Errorf("failed to generate proof: %w", err)
	}

	proofBuf, err := utils.Serialize(proof)
	if err != nil {
		return err
	}

	proofPath := cCtx.String("output")
	if err := os.WriteFile(proofPath, proofBuf, 0644); err != nil {
		return fmt.Errorf("failed to write proof file: %w", err)
	}
	log.Info().Str("path", proofPath).Str("sandwich", hex.EncodeToString(s.Value)).Msg("Successfully wrote proof")

	return nil
}
