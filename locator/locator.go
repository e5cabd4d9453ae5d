// Package locator finds where a plaintext sits inside a base64 or base64url
// encoded blob, measured in bytes of the decoded blob.
package locator

import (
	"bytes"
	"fmt"

	"github.com/wtf-protocol/helpers/utils"
)

// Alphabet is the base64 alphabet of an encoded blob.
type Alphabet int

const (
	Base64 Alphabet = iota
	Base64URL
)

func (a Alphabet) String() string {
	switch a {
	case Base64:
		return "base64"
	case Base64URL:
		return "base64url"
	default:
		return fmt.Sprintf("Alphabet(%d)", int(a))
	}
}

// ParseAlphabet maps "base64" and "base64url" to their Alphabet.
func ParseAlphabet(s string) (Alphabet, error) {
	switch s {
	case "base64":
		return Base64, nil
	case "base64url":
		return Base64URL, nil
	default:
		return 0, &utils.UnrecognizedOptionError{Option: "alphabet", Value: s}
	}
}

// Range is a half-open byte range [Start, End).
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Range) Len() int { return r.End - r.Start }

// NotFoundError is returned when the plaintext does not occur in the decoded
// blob.
type NotFoundError struct {
	Plaintext []byte
	Encoded   string
	Decoded   []byte
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("plaintext %q not found in %q (encoded %s)", e.Plaintext, e.Decoded, e.Encoded)
}

// Locator decodes blobs with Codec, which must accept the standard base64
// alphabet.
type Locator struct {
	Codec utils.Codec
}

// Default decodes standard base64 with optional padding.
var Default = Locator{Codec: utils.StdCodec{}}

// FindPlaintextRange returns the range of the first occurrence of plaintext in
// the decoded encoded blob. Url-alphabet blobs are rewritten to the standard
// alphabet before decoding; no padding is added.
func (l Locator) FindPlaintextRange(plaintext []byte, encoded string, alphabet Alphabet) (Range, error) {
	normalized := encoded
	switch alphabet {
	case Base64:
	case Base64URL:
		normalized = utils.ToBase64(encoded)
	default:
		return Range{}, &utils.UnrecognizedOptionError{Option: "alphabet", Value: alphabet.String()}
	}

	decoded, err := l.Codec.Decode(normalized)
	if err != nil {
		return Range{}, err
	}

	start := bytes.Index(decoded, plaintext)
	if start == -1 {
		return Range{}, &NotFoundError{Plaintext: plaintext, Encoded: encoded, Decoded: decoded}
	}

	return Range{Start: start, End: start + len(plaintext)}, nil
}

// FindPlaintextRange runs Default.FindPlaintextRange.
func FindPlaintextRange(plaintext []byte, encoded string, alphabet Alphabet) (Range, error) {
	return Default.FindPlaintextRange(plaintext, encoded, alphabet)
}

// FindTextRange is FindPlaintextRange for a text needle.
func FindTextRange(text string, encoded string, alphabet Alphabet) (Range, error) {
	return Default.FindPlaintextRange([]byte(text), encoded, alphabet)
}
