package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/lookup/logderivlookup"
	"github.com/consensys/gnark/std/math/uints"
)

// SandwichCircuit proves that the private JWT payload contains the public
// sandwich bytes starting at the public offset. This is the same check the
// verifier contract runs on (idxStart, idxEnd, sandwichValue), without
// revealing the payload.
type SandwichCircuit struct {
	// Public inputs.
	Sandwich    []uints.U8        `gnark:",public"`
	SandwichLen frontend.Variable `gnark:",public"`
	Offset      frontend.Variable `gnark:",public"`

	// Private inputs.
	Payload []uints.U8
}

// NewSandwichCircuit returns a circuit sized with MaxSandwichLen and MaxPayloadLen.
func NewSandwichCircuit() *SandwichCircuit {
	return &SandwichCircuit{
		Sandwich: make([]uints.U8, MaxSandwichLen),
		Payload:  make([]uints.U8, MaxPayloadLen),
	}
}

func (c *SandwichCircuit) Define(api frontend.API) error {
	api.AssertIsLessOrEqual(c.SandwichLen, len(c.Sandwich))
	api.AssertIsLessOrEqual(api.Add(c.Offset, c.SandwichLen), len(c.Payload))

	// Lookup table: <payload>
	lookup := logderivlookup.New(api)
	for _, b := range c.Payload {
		lookup.Insert(b.Val)
	}

	for i := range c.Sandwich {
		isSandwich := lessThan(api, 16, i, c.SandwichLen)

		// Bytes past SandwichLen look up index 0 and are ignored.
		payloadByte := lookup.Lookup(
			api.Mul(isSandwich, api.Add(c.Offset, i)),
		)[0]

		api.AssertIsEqual(api.Mul(isSandwich, api.Sub(payloadByte, c.Sandwich[i].Val)), 0)
	}

	return nil
}
