package alzw

// Frame and chunk container constants.
const (
	MaxAlphabet        = 255   // Maximum distinct symbols in one compression unit.
	MaxCode            = 255   // Highest code; each code is stored as one byte.
	EnvelopeHeaderSize = 4     // Original length (2 bytes BE) + frame length (2 bytes BE).
	DefaultChunkSize   = 32767 // Default bytes of input per chunk.
	MaxChunkSize       = 65535 // Largest chunk the 16-bit length field can describe.
)
