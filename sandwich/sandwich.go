// Package sandwich builds the sandwiches a WTF verifier contract checks: a
// claim value between known marker bytes, located by byte offset in the JWT
// payload.
package sandwich

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/wtf-protocol/helpers/locator"
	"github.com/wtf-protocol/helpers/utils"
)

// Value is a sandwich in hex text and raw bytes.
type Value struct {
	Hex   string
	Bytes []byte
}

// Build returns bottom || claimValue || top.
func Build(claimValue string, bottom, top []byte) Value {
	h := hex.EncodeToString(bottom) + hex.EncodeToString([]byte(claimValue)) + hex.EncodeToString(top)

	b := make([]byte, 0, len(bottom)+len(claimValue)+len(top))
	b = append(b, bottom...)
	b = append(b, claimValue...)
	b = append(b, top...)

	return Value{Hex: h, Bytes: b}
}

// BuildHex is Build for markers given as hex text with optional 0x prefixes.
func BuildHex(claimValue, bottomHex, topHex string) (Value, error) {
	bottom, err := utils.DecodeHex(bottomHex)
	if err != nil {
		return Value{}, fmt.Errorf("invalid bottom bread: %w", err)
	}
	top, err := utils.DecodeHex(topHex)
	if err != nil {
		return Value{}, fmt.Errorf("invalid top bread: %w", err)
	}
	return Build(claimValue, bottom, top), nil
}

// Sandwich is a claim's sandwich and where it sits in the decoded payload.
// Range is nil when the sandwich could not be located; Err then says why.
type Sandwich struct {
	Claim ClaimKind
	Range *locator.Range
	Value []byte
	Err   error
}

func (s Sandwich) Found() bool { return s.Range != nil }

// ClaimError reports a claim whose sandwich could not be built or located.
type ClaimError struct {
	Claim    ClaimKind
	Searched []byte
	Err      error
}

func (e *ClaimError) Error() string {
	if e.Searched != nil {
		return fmt.Sprintf("%s sandwich %q: %v", e.Claim, e.Searched, e.Err)
	}
	return fmt.Sprintf("%s sandwich: %v", e.Claim, e.Err)
}

func (e *ClaimError) Unwrap() error { return e.Err }

// ErrEmptySandwich is returned by Locate for a sandwich with no bytes, which
// would otherwise match at offset 0 of any payload.
var ErrEmptySandwich = errors.New("empty sandwich")

// Locate finds value in the base64url encoded payload.
func Locate(kind ClaimKind, value []byte, payloadRaw string) Sandwich {
	s := Sandwich{Claim: kind, Value: value}

	if len(value) == 0 {
		s.Err = &ClaimError{Claim: kind, Err: ErrEmptySandwich}
		return s
	}

	r, err := locator.FindPlaintextRange(value, payloadRaw, locator.Base64URL)
	if err != nil {
		s.Err = &ClaimError{Claim: kind, Searched: value, Err: err}
		return s
	}
	s.Range = &r

	return s
}

// ClaimText renders a payload claim the way it appears between the markers:
// strings verbatim and numbers by their JSON digits.
func ClaimText(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported claim value type %T", v)
	}
}
