package utils

import (
	"bytes"
	"fmt"
	"io"
)

// Serialize writes a gnark object (constraint system, key, proof) to memory.
func Serialize(v io.WriterTo) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := v.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize reads a gnark object previously written by Serialize.
func Deserialize(v io.ReaderFrom, data []byte) error {
	if _, err := v.ReadFrom(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to deserialize: %w", err)
	}
	return nil
}
