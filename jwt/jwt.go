// Package jwt splits a compact JWT, or an OIDC redirect fragment carrying one
// in its id_token field, into raw and decoded segments.
package jwt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/wtf-protocol/helpers/utils"
)

const idTokenField = "id_token"

// Section is a JSON segment of a JWT (header or payload).
type Section struct {
	Raw     string
	Decoded []byte
	Claims  map[string]any
}

// Signature is the signature segment of a JWT.
type Signature struct {
	Raw     string
	Decoded []byte
}

// Token is a decomposed JWT.
type Token struct {
	Header    Section
	Payload   Section
	Signature Signature
}

// DecompositionError is returned when a token cannot be split into its three
// segments or a segment cannot be decoded.
type DecompositionError struct {
	Segment string
	Reason  string
	Err     error
}

func (e *DecompositionError) Error() string {
	msg := "invalid JWT"
	if e.Segment != "" {
		msg += " " + e.Segment
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecompositionError) Unwrap() error { return e.Err }

// Parse decomposes token. Both the compact form header.payload.signature and a
// '&' separated query string with an id_token field are accepted. Compact
// segments may carry '=' padding.
func Parse(token string) (*Token, error) {
	compact := token
	if strings.Contains(token, "&") || strings.Contains(token, idTokenField+"=") {
		var err error
		if compact, err = idTokenFromQuery(token); err != nil {
			return nil, err
		}
	}

	sections := strings.Split(compact, ".")
	if len(sections) != 3 {
		return nil, &DecompositionError{Reason: fmt.Sprintf("expected 3 sections, got %d", len(sections))}
	}

	header, err := parseSection("header", sections[0])
	if err != nil {
		return nil, err
	}

	payload, err := parseSection("payload", sections[1])
	if err != nil {
		return nil, err
	}

	sig, err := utils.URLCodec{}.Decode(sections[2])
	if err != nil {
		return nil, &DecompositionError{Segment: "signature", Reason: "failed to decode", Err: err}
	}

	return &Token{
		Header:    header,
		Payload:   payload,
		Signature: Signature{Raw: sections[2], Decoded: sig},
	}, nil
}

// Message is the signed part of the token: header and payload joined by '.'.
func (t *Token) Message() string {
	return t.Header.Raw + "." + t.Payload.Raw
}

// PayloadByteOffset is the byte offset of the payload within Message.
func (t *Token) PayloadByteOffset() int {
	return len(t.Header.Raw) + 1
}

// SignatureInt returns the signature as an unsigned big-endian integer.
func (t *Token) SignatureInt() *big.Int {
	return new(big.Int).SetBytes(t.Signature.Decoded)
}

func idTokenFromQuery(query string) (string, error) {
	query = strings.TrimLeft(query, "#?")
	for _, field := range strings.Split(query, "&") {
		key, value, _ := strings.Cut(field, "=")
		if key == idTokenField {
			return value, nil
		}
	}
	return "", &DecompositionError{Reason: fmt.Sprintf("missing %s field", idTokenField)}
}

func parseSection(name, raw string) (Section, error) {
	decoded, err := utils.URLCodec{}.Decode(raw)
	if err != nil {
		return Section{}, &DecompositionError{Segment: name, Reason: "failed to decode", Err: err}
	}

	// Numbers stay json.Number so large claims such as exp keep their digits.
	dec := json.NewDecoder(bytes.NewReader(decoded))
	dec.UseNumber()

	var claims map[string]any
	if err := dec.Decode(&claims); err != nil {
		return Section{}, &DecompositionError{Segment: name, Reason: "failed to parse JSON", Err: err}
	}
	if claims == nil {
		return Section{}, &DecompositionError{Segment: name, Reason: "not a JSON object"}
	}
	if dec.More() {
		return Section{}, &DecompositionError{Segment: name, Reason: "trailing data after JSON object"}
	}

	return Section{Raw: raw, Decoded: decoded, Claims: claims}, nil
}
