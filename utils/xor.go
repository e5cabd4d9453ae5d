package utils

// FixedXOR XORs a and b byte by byte. The shorter operand is left padded with
// zeros so both are aligned on their last byte. The result has the length of
// the longer operand and neither input is modified.
func FixedXOR(a, b []byte) []byte {
	l := max(len(a), len(b))

	out := make([]byte, l)
	copy(out[l-len(a):], a)
	for i := range b {
		out[l-len(b)+i] ^= b[i]
	}

	return out
}
