package circuits

const (
	// MaxPayloadLen bounds the decoded JWT payload JSON.
	MaxPayloadLen = 1400

	// MaxSandwichLen bounds a sandwich (bread + claim value + bread).
	MaxSandwichLen = 128
)
