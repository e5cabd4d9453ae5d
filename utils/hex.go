package utils

import (
	"encoding/hex"
	"strings"
)

// StripHexPrefix removes a leading "0x" or "0X".
func StripHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

// DecodeHex decodes a hex string with an optional 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(StripHexPrefix(s))
	if err != nil {
		return nil, &DecodeError{Encoding: "hex", Input: s, Err: err}
	}
	return b, nil
}

// HexToString decodes s and returns the bytes as a string.
func HexToString(s string) (string, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
