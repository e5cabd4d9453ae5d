package markers

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/wtf-protocol/helpers/sandwich"
)

// VerifierABI covers the marker getters of the WTF verifier contract.
const VerifierABI = `[
	{"inputs":[],"name":"bottomBread","outputs":[{"internalType":"bytes","name":"","type":"bytes"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"topBread","outputs":[{"internalType":"bytes","name":"","type":"bytes"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"expBottomBread","outputs":[{"internalType":"bytes","name":"","type":"bytes"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"expTopBread","outputs":[{"internalType":"bytes","name":"","type":"bytes"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"aud","outputs":[{"internalType":"bytes","name":"","type":"bytes"}],"stateMutability":"view","type":"function"}
]`

// Caller executes read-only contract calls. *ethclient.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Contract reads markers from a deployed verifier contract.
type Contract struct {
	caller  Caller
	address common.Address
	abi     abi.ABI
}

func NewContract(caller Caller, address common.Address) (*Contract, error) {
	parsed, err := abi.JSON(strings.NewReader(VerifierABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse verifier ABI: %w", err)
	}

	return &Contract{caller: caller, address: address, abi: parsed}, nil
}

func (c *Contract) Bread(ctx context.Context, kind sandwich.ClaimKind) (sandwich.Bread, error) {
	if err := sandwich.CheckBreadKind(kind); err != nil {
		return sandwich.Bread{}, err
	}

	bottomMethod, topMethod := "bottomBread", "topBread"
	if kind == sandwich.ClaimExpiry {
		bottomMethod, topMethod = "expBottomBread", "expTopBread"
	}

	bottom, err := c.callBytes(ctx, bottomMethod)
	if err != nil {
		return sandwich.Bread{}, err
	}
	top, err := c.callBytes(ctx, topMethod)
	if err != nil {
		return sandwich.Bread{}, err
	}

	return sandwich.Bread{Bottom: bottom, Top: top}, nil
}

func (c *Contract) Audience(ctx context.Context) ([]byte, error) {
	aud, err := c.callBytes(ctx, "aud")
	if err != nil {
		return nil, err
	}
	if len(aud) == 0 {
		return nil, fmt.Errorf("aud is not set on %s", c.address)
	}
	return aud, nil
}

func (c *Contract) callBytes(ctx context.Context, method string) ([]byte, error) {
	input, err := c.abi.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	output, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &c.address, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s on %s: %w", method, c.address, err)
	}

	values, err := c.abi.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}

	b, ok := values[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected %s result type %T", method, values[0])
	}

	return b, nil
}
