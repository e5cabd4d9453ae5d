// Package commitment binds a message to an address with a pair of hash
// commitments.
//
// The unbound commitment is H(message) and the bound commitment is
// H(message || address). H must not admit length extension: whoever learns
// H(message) must not be able to compute H(message || address) without the
// message itself. Keccak-256 is a sponge and is used by default. SHA-256 is a
// Merkle-Damgard hash and must never be used here.
package commitment

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	bn254fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mdehoog/poseidon/poseidon"

	"github.com/wtf-protocol/helpers/utils"
)

// ElementSize is the number of message bytes packed in one BN254 field element.
const ElementSize = 31

type Scheme int

const (
	// Keccak256 is the scheme verified on-chain.
	Keccak256 Scheme = iota
	// Poseidon is a sponge over the BN254 scalar field, cheap to recompute in
	// a circuit. The byte length is absorbed first so inputs that differ only
	// in leading zero bytes of the last element do not collide.
	Poseidon
)

func (s Scheme) String() string {
	switch s {
	case Keccak256:
		return "keccak256"
	case Poseidon:
		return "poseidon"
	default:
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
}

func ParseScheme(s string) (Scheme, error) {
	switch s {
	case "keccak256", "keccak":
		return Keccak256, nil
	case "poseidon":
		return Poseidon, nil
	default:
		return 0, &utils.UnrecognizedOptionError{Option: "commitment scheme", Value: s}
	}
}

// Pair holds the two commitments as 0x-prefixed 32 byte hex strings.
type Pair struct {
	Unbound string `json:"unbound"`
	Bound   string `json:"bound"`
}

// Generate returns the Keccak-256 commitments of message, alone and followed
// by the address bytes. address is hex with an optional 0x prefix.
func Generate(address string, message []byte) (Pair, error) {
	return GenerateWith(Keccak256, address, message)
}

func GenerateWith(scheme Scheme, address string, message []byte) (Pair, error) {
	addr, err := utils.DecodeHex(address)
	if err != nil {
		return Pair{}, fmt.Errorf("invalid address: %w", err)
	}

	bound := make([]byte, 0, len(message)+len(addr))
	bound = append(bound, message...)
	bound = append(bound, addr...)

	switch scheme {
	case Keccak256:
		return Pair{
			Unbound: hexutil.Encode(crypto.Keccak256(message)),
			Bound:   hexutil.Encode(crypto.Keccak256(bound)),
		}, nil

	case Poseidon:
		unboundHash, err := poseidonHash(message)
		if err != nil {
			return Pair{}, fmt.Errorf("failed to hash message: %w", err)
		}
		boundHash, err := poseidonHash(bound)
		if err != nil {
			return Pair{}, fmt.Errorf("failed to hash bound message: %w", err)
		}
		return Pair{Unbound: unboundHash, Bound: boundHash}, nil

	default:
		return Pair{}, &utils.UnrecognizedOptionError{Option: "commitment scheme", Value: scheme.String()}
	}
}

// SHA256Hex hashes the UTF-8 bytes of s. Used for the JWT message digest the
// verifier checks against the RSA signature, not for commitments.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hexutil.Encode(sum[:])
}

// Keccak256Hex hashes the UTF-8 bytes of s.
func Keccak256Hex(s string) string {
	return hexutil.Encode(crypto.Keccak256([]byte(s)))
}

func poseidonHash(data []byte) (string, error) {
	if data == nil {
		data = []byte{}
	}

	elements, err := utils.BytesToElements(data, ElementSize)
	if err != nil {
		return "", err
	}

	inputs := append([]*big.Int{big.NewInt(int64(len(data)))}, elements...)
	h, err := poseidon.HashMulti[*bn254fr.Element](inputs)
	if err != nil {
		return "", err
	}

	return hexutil.Encode(h.FillBytes(make([]byte, 32))), nil
}
