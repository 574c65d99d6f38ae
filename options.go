package alzw

// OverflowPolicy defines what the encoder does once every one-byte code is in use.
type OverflowPolicy int

// Overflow policy constants.
const (
	OverflowFreeze OverflowPolicy = iota // Stop growing the dictionary and keep matching existing entries (default).
	OverflowError                        // Fail with ErrDictionaryOverflow.
)

// String returns the policy name.
func (p OverflowPolicy) String() string {
	switch p {
	case OverflowFreeze:
		return "freeze"
	case OverflowError:
		return "error"
	default:
		return "unknown"
	}
}

// CompressOptions configures Compress, Encode and the chunked writer.
type CompressOptions struct {
	// Overflow selects the dictionary overflow policy.
	Overflow OverflowPolicy
	// ChunkSize is the number of input bytes per envelope in the chunked container.
	// 0 means DefaultChunkSize. Ignored by one-shot Compress.
	ChunkSize int
}

// DefaultCompressOptions returns options for default compression: freeze on overflow, 32767 byte chunks.
func DefaultCompressOptions() *CompressOptions {
	return &CompressOptions{
		Overflow:  OverflowFreeze,
		ChunkSize: DefaultChunkSize,
	}
}

// StrictCompressOptions returns options that reject any unit whose dictionary would outgrow one byte.
func StrictCompressOptions() *CompressOptions {
	return &CompressOptions{
		Overflow:  OverflowError,
		ChunkSize: DefaultChunkSize,
	}
}

// chunkSize returns the effective chunk size or ErrInvalidChunkSize.
func (o *CompressOptions) chunkSize() (int, error) {
	n := o.ChunkSize
	if n == 0 {
		n = DefaultChunkSize
	}
	if n < 1 || n > MaxChunkSize {
		return 0, ErrInvalidChunkSize
	}

	return n, nil
}

// Options configures Decompress and the chunked readers.
type Options struct {
	// MaxOutputSize caps the decoded size of one frame. 0 means no limit.
	MaxOutputSize int
}

// DefaultOptions returns options for default decoding: no output limit.
func DefaultOptions() *Options {
	return &Options{}
}
