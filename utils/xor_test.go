package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixedXOR(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []byte
		expected []byte
	}{
		{"equal length", []byte{0x0f, 0xf0}, []byte{0xff, 0xff}, []byte{0xf0, 0x0f}},
		{"shorter right", []byte{0x01, 0x02, 0x03}, []byte{0x03}, []byte{0x01, 0x02, 0x00}},
		{"shorter left", []byte{0xaa}, []byte{0x01, 0x02, 0x03}, []byte{0x01, 0x02, 0xa9}},
		{"one empty", []byte{0x12, 0x34}, nil, []byte{0x12, 0x34}},
		{"both empty", nil, []byte{}, []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, FixedXOR(tt.a, tt.b))
		})
	}
}

func TestFixedXORProperties(t *testing.T) {
	inputs := [][]byte{
		nil,
		{0x00},
		{0xde, 0xad, 0xbe, 0xef},
		[]byte("0x7b2273756222"),
		bytes.Repeat([]byte{0x5a}, 33),
	}

	for _, a := range inputs {
		require.Equal(t, make([]byte, len(a)), FixedXOR(a, a))

		for _, b := range inputs {
			out := FixedXOR(a, b)
			require.Equal(t, out, FixedXOR(b, a))
			require.Len(t, out, max(len(a), len(b)))
		}
	}
}

func TestFixedXORDoesNotMutate(t *testing.T) {
	a := []byte{0x01, 0x02}
	b := []byte{0x03}

	FixedXOR(a, b)

	require.Equal(t, []byte{0x01, 0x02}, a)
	require.Equal(t, []byte{0x03}, b)
}
