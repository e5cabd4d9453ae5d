package sandwich

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type sandwichJSON struct {
	Claim         string `json:"claim"`
	IdxStart      *int   `json:"idxStart"`
	IdxEnd        *int   `json:"idxEnd"`
	SandwichValue string `json:"sandwichValue"`
	Error         string `json:"error,omitempty"`
}

// MarshalJSON renders the sandwich the way the verifier contract struct names
// it. Offsets are null when the sandwich was not located.
func (s Sandwich) MarshalJSON() ([]byte, error) {
	out := sandwichJSON{
		Claim:         s.Claim.String(),
		SandwichValue: hexutil.Encode(s.Value),
	}
	if s.Range != nil {
		start, end := s.Range.Start, s.Range.End
		out.IdxStart, out.IdxEnd = &start, &end
	}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return json.Marshal(out)
}

type paramsJSON struct {
	ID                  string   `json:"id"`
	ExpirationTimestamp int64    `json:"expTimeInt"`
	ExpirationTime      string   `json:"expTime"`
	Signature           string   `json:"signature"`
	Message             string   `json:"message"`
	HashedMessage       string   `json:"hashedMessage"`
	PayloadByteOffset   int      `json:"payloadIdx"`
	IDSandwich          Sandwich `json:"proposedIDSandwich"`
	ExpSandwich         Sandwich `json:"proposedExpSandwich"`
	AudSandwich         Sandwich `json:"proposedAud"`
}

func (p *VerificationParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(paramsJSON{
		ID:                  p.ID,
		ExpirationTimestamp: p.ExpirationTimestamp,
		ExpirationTime:      p.ExpirationTime,
		Signature:           hexutil.EncodeBig(p.Signature),
		Message:             p.Message,
		HashedMessage:       p.HashedMessage,
		PayloadByteOffset:   p.PayloadByteOffset,
		IDSandwich:          p.IDSandwich,
		ExpSandwich:         p.ExpSandwich,
		AudSandwich:         p.AudSandwich,
	})
}
