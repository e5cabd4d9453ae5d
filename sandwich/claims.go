package sandwich

import (
	"context"
	"fmt"

	"github.com/wtf-protocol/helpers/utils"
)

// ClaimKind names the claims the verifier checks against the payload.
type ClaimKind int

const (
	ClaimID ClaimKind = iota + 1
	ClaimExpiry
	// ClaimAudience is matched as a single marker, not sandwiched.
	ClaimAudience
)

func (k ClaimKind) String() string {
	switch k {
	case ClaimID:
		return "id"
	case ClaimExpiry:
		return "exp"
	case ClaimAudience:
		return "aud"
	default:
		return fmt.Sprintf("ClaimKind(%d)", int(k))
	}
}

// ParseClaimKind maps "id", "exp" and "aud" to their ClaimKind.
func ParseClaimKind(s string) (ClaimKind, error) {
	switch s {
	case "id":
		return ClaimID, nil
	case "exp":
		return ClaimExpiry, nil
	case "aud":
		return ClaimAudience, nil
	default:
		return 0, &utils.UnrecognizedOptionError{Option: "claim kind", Value: s}
	}
}

// Bread is the pair of markers surrounding a claim value.
type Bread struct {
	Bottom []byte
	Top    []byte
}

// MarkerSource supplies the markers a verifier contract expects.
type MarkerSource interface {
	// Bread returns the markers for ClaimID or ClaimExpiry. Any other kind
	// fails with *utils.UnrecognizedOptionError.
	Bread(ctx context.Context, kind ClaimKind) (Bread, error)

	// Audience returns the exact bytes the audience claim must match.
	Audience(ctx context.Context) ([]byte, error)
}

// CheckBreadKind rejects kinds that have no bread. MarkerSource
// implementations call it before looking anything up.
func CheckBreadKind(kind ClaimKind) error {
	if kind != ClaimID && kind != ClaimExpiry {
		return &utils.UnrecognizedOptionError{Option: "bread kind", Value: kind.String()}
	}
	return nil
}
