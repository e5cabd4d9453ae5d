package utils

import (
	"encoding/base64"
	"strings"
)

// Codec turns text into bytes and back.
type Codec interface {
	Decode(s string) ([]byte, error)
	Encode(b []byte) string
}

// StdCodec decodes standard base64 with or without trailing '=' padding and
// encodes with padding.
type StdCodec struct{}

func (StdCodec) Decode(s string) ([]byte, error) {
	b, err := base64.RawStdEncoding.Strict().DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, &DecodeError{Encoding: "base64", Input: s, Err: err}
	}
	return b, nil
}

func (StdCodec) Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// URLCodec decodes unpadded base64url, as found in JWT segments, and encodes
// without padding.
type URLCodec struct{}

func (URLCodec) Decode(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.Strict().DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, &DecodeError{Encoding: "base64url", Input: s, Err: err}
	}
	return b, nil
}

func (URLCodec) Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// ToBase64 rewrites a base64url string in the standard alphabet. Padding is
// neither added nor removed.
func ToBase64(s string) string {
	return strings.NewReplacer("-", "+", "_", "/").Replace(s)
}

// ToBase64URL rewrites a standard base64 string in the url alphabet and drops
// any padding.
func ToBase64URL(s string) string {
	return strings.TrimRight(strings.NewReplacer("+", "-", "/", "_").Replace(s), "=")
}

// PadBase64 returns the canonical padded form of a standard base64 string.
func PadBase64(s string) (string, error) {
	var c StdCodec
	b, err := c.Decode(s)
	if err != nil {
		return "", err
	}
	return c.Encode(b), nil
}
