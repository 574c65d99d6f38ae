package alzw

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// readBufferSize is the size of one underlying read from the compressed source.
const readBufferSize = 32 << 10

// maxEmptyReads bounds consecutive (0, nil) reads before giving up with io.ErrNoProgress.
const maxEmptyReads = 100

// envelopeState is the position of the decoder inside the envelope sequence.
type envelopeState int

const (
	awaitingHeader envelopeState = iota // Collecting the 4-byte length header.
	awaitingBody                        // Collecting frame bytes.
)

// Reader decompresses the chunked container produced by Writer.
// Envelopes are consumed strictly in order; a frame split across underlying reads
// is accumulated until the declared frame length is available.
type Reader struct {
	src      io.Reader
	opts     Options
	inBuf    []byte // Buffer for underlying reads.
	in       []byte // Unconsumed part of inBuf.
	acc      []byte // Bytes collected for the current header or body.
	need     int    // Bytes still needed to complete acc.
	state    envelopeState
	origLen  int // Original length of the chunk whose body is being collected.
	out      []byte
	outPos   int
	consumed int64
	chunks   int
	eof      bool
	err      error
}

// NewReader returns a Reader decoding envelopes from r. Options nil means DefaultOptions.
func NewReader(r io.Reader, opts *Options) *Reader {
	if opts == nil {
		opts = DefaultOptions()
	}

	z := &Reader{
		src:   r,
		opts:  *opts,
		inBuf: make([]byte, readBufferSize),
		need:  EnvelopeHeaderSize,
	}
	if r == nil {
		z.err = ErrNilReader
	}

	return z
}

// Read reads decompressed bytes into p.
func (z *Reader) Read(p []byte) (int, error) {
	for z.outPos == len(z.out) {
		if z.err != nil {
			return 0, z.err
		}

		if err := z.nextChunk(); err != nil {
			z.err = err
			return 0, err
		}
	}

	n := copy(p, z.out[z.outPos:])
	z.outPos += n

	return n, nil
}

// WriteTo writes all remaining decompressed chunks to w.
func (z *Reader) WriteTo(w io.Writer) (int64, error) {
	if w == nil {
		return 0, ErrNilWriter
	}

	var written int64
	for {
		if z.outPos < len(z.out) {
			if err := writeFull(w, z.out[z.outPos:]); err != nil {
				z.err = err
				return written, err
			}
			written += int64(len(z.out) - z.outPos)
			z.outPos = len(z.out)
		}

		if z.err != nil {
			if errors.Is(z.err, io.EOF) {
				return written, nil
			}

			return written, z.err
		}

		if err := z.nextChunk(); err != nil {
			z.err = err
		}
	}
}

// Consumed returns the number of compressed bytes consumed, envelope headers included.
func (z *Reader) Consumed() int64 {
	return z.consumed
}

// Chunks returns the number of chunks decoded so far.
func (z *Reader) Chunks() int {
	return z.chunks
}

// Reset discards all state and reads from r.
func (z *Reader) Reset(r io.Reader) {
	z.src = r
	z.in = nil
	z.acc = z.acc[:0]
	z.need = EnvelopeHeaderSize
	z.state = awaitingHeader
	z.origLen = 0
	z.out = z.out[:0]
	z.outPos = 0
	z.consumed = 0
	z.chunks = 0
	z.eof = false
	z.err = nil
	if r == nil {
		z.err = ErrNilReader
	}
}

// nextChunk advances the envelope state machine until one chunk is decoded into z.out.
// It returns io.EOF only at an envelope boundary.
func (z *Reader) nextChunk() error {
	z.out = z.out[:0]
	z.outPos = 0

	for {
		if len(z.in) == 0 {
			if z.eof {
				if z.state == awaitingHeader && len(z.acc) == 0 {
					return io.EOF
				}

				return z.truncated()
			}

			if err := z.fill(); err != nil {
				return err
			}

			continue
		}

		// Whole body already buffered: decode in place without copying.
		if z.state == awaitingBody && len(z.acc) == 0 && len(z.in) >= z.need {
			body := z.in[:z.need]
			z.in = z.in[z.need:]
			z.consumed += int64(len(body))

			return z.finishBody(body)
		}

		take := min(z.need, len(z.in))
		z.acc = append(z.acc, z.in[:take]...)
		z.in = z.in[take:]
		z.need -= take
		z.consumed += int64(take)
		if z.need > 0 {
			continue
		}

		switch z.state {
		case awaitingHeader:
			z.origLen = int(binary.BigEndian.Uint16(z.acc[0:2]))
			frameLen := int(binary.BigEndian.Uint16(z.acc[2:4]))
			z.acc = z.acc[:0]

			if frameLen == 0 {
				z.need = EnvelopeHeaderSize
				return z.finishBody(nil)
			}

			z.state = awaitingBody
			z.need = frameLen
		case awaitingBody:
			body := z.acc
			z.acc = z.acc[:0]

			return z.finishBody(body)
		}
	}
}

// fill performs one underlying read into inBuf.
func (z *Reader) fill() error {
	for i := 0; i < maxEmptyReads; i++ {
		n, err := z.src.Read(z.inBuf)
		z.in = z.inBuf[:n]
		if err != nil {
			if errors.Is(err, io.EOF) {
				z.eof = true
				return nil
			}

			return err
		}
		if n > 0 {
			return nil
		}
	}

	return io.ErrNoProgress
}

// finishBody decodes one frame, checks it against the envelope and rearms the header state.
func (z *Reader) finishBody(body []byte) error {
	z.state = awaitingHeader
	z.need = EnvelopeHeaderSize

	out, err := decodeChunk(z.out[:0], body, z.origLen, &z.opts)
	if err != nil {
		return fmt.Errorf("chunk %d: %w", z.chunks, err)
	}

	z.out = out
	z.chunks++

	return nil
}

// truncated reports an envelope cut short by end of input.
func (z *Reader) truncated() error {
	if z.state == awaitingHeader {
		return fmt.Errorf("%w: chunk %d header has %d of %d bytes", ErrTruncatedEnvelope, z.chunks, len(z.acc), EnvelopeHeaderSize)
	}

	return fmt.Errorf("%w: chunk %d frame missing %d bytes", ErrTruncatedEnvelope, z.chunks, z.need)
}

// decodeChunk decodes a frame into dst and verifies that it expands to origLen bytes.
func decodeChunk(dst, frame []byte, origLen int, opts *Options) ([]byte, error) {
	f, err := ParseFrame(frame)
	if err != nil {
		return nil, err
	}

	if opts.MaxOutputSize > 0 && origLen > opts.MaxOutputSize {
		return nil, fmt.Errorf("%w: chunk declares %d bytes, limit=%d", ErrOutputTooLarge, origLen, opts.MaxOutputSize)
	}
	if origLen == 0 {
		if len(f.Alphabet) != 0 {
			return nil, fmt.Errorf("%w: empty chunk with %d byte frame", ErrMalformedFrame, len(frame))
		}

		return dst, nil
	}

	out, err := f.Decode(dst, &Options{MaxOutputSize: origLen})
	if errors.Is(err, ErrOutputTooLarge) {
		return nil, fmt.Errorf("%w: frame expands past declared %d bytes", ErrMalformedFrame, origLen)
	}
	if err != nil {
		return nil, err
	}
	if len(out) != origLen {
		return nil, fmt.Errorf("%w: decoded %d bytes, envelope declares %d", ErrMalformedFrame, len(out), origLen)
	}

	return out, nil
}

// DecompressStream reads the chunked container from src until EOF and writes the
// decompressed bytes to dst. It returns the number of compressed bytes consumed and
// decompressed bytes written. Options nil means DefaultOptions.
func DecompressStream(dst io.Writer, src io.Reader, opts *Options) (consumed, written int64, err error) {
	if src == nil {
		return 0, 0, ErrNilReader
	}

	z := NewReader(src, opts)
	written, err = z.WriteTo(dst)

	return z.Consumed(), written, err
}
