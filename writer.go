package alzw

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Writer compresses a byte stream into the chunked container: every ChunkSize input bytes
// become one envelope [original length u16 BE][frame length u16 BE][frame].
// Each chunk restarts its alphabet and dictionary. Close flushes the final partial chunk
// but does not close the underlying writer.
type Writer struct {
	dst       io.Writer
	opts      CompressOptions
	chunkSize int
	buf       []byte // Pending input, at most chunkSize bytes.
	out       []byte // Scratch envelope.
	index     Index
	consumed  int64
	written   int64
	err       error
	closed    bool
}

// NewWriter returns a Writer writing envelopes to w. Options nil means DefaultCompressOptions().
func NewWriter(w io.Writer, opts *CompressOptions) (*Writer, error) {
	if w == nil {
		return nil, ErrNilWriter
	}
	if opts == nil {
		opts = DefaultCompressOptions()
	}

	size, err := opts.chunkSize()
	if err != nil {
		return nil, err
	}

	return &Writer{
		dst:       w,
		opts:      *opts,
		chunkSize: size,
		buf:       make([]byte, 0, size),
	}, nil
}

// Write buffers p and emits an envelope for every full chunk.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if w.err != nil {
		return 0, w.err
	}

	n := 0
	for len(p) > 0 {
		take := min(w.chunkSize-len(w.buf), len(p))
		w.buf = append(w.buf, p[:take]...)
		p = p[take:]
		n += take

		if len(w.buf) == w.chunkSize {
			if err := w.flushChunk(); err != nil {
				return n, err
			}
		}
	}

	return n, nil
}

// ReadFrom reads src to EOF in chunk-sized reads, emitting an envelope per full chunk.
// The final partial chunk stays buffered until Flush or Close.
func (w *Writer) ReadFrom(src io.Reader) (int64, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if w.err != nil {
		return 0, w.err
	}
	if src == nil {
		return 0, ErrNilReader
	}

	var total int64
	for {
		n, err := io.ReadFull(src, w.buf[len(w.buf):w.chunkSize])
		w.buf = w.buf[:len(w.buf)+n]
		total += int64(n)

		if len(w.buf) == w.chunkSize {
			if ferr := w.flushChunk(); ferr != nil {
				return total, ferr
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return total, nil
			}

			return total, err
		}
	}
}

// Flush emits the buffered input as a (possibly short) chunk.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrClosed
	}
	if w.err != nil {
		return w.err
	}
	if len(w.buf) == 0 {
		return nil
	}

	return w.flushChunk()
}

// Close flushes the final chunk. Further writes return ErrClosed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	err := w.Flush()
	w.closed = true

	return err
}

// Reset discards buffered state and the index, and directs output to dst.
func (w *Writer) Reset(dst io.Writer) {
	w.dst = dst
	w.buf = w.buf[:0]
	w.index = Index{}
	w.consumed = 0
	w.written = 0
	w.err = nil
	w.closed = false
}

// Index returns the chunk directory of everything written so far.
// The result is complete once Close returns.
func (w *Writer) Index() *Index {
	return &w.index
}

// Consumed returns the number of input bytes compressed into envelopes.
func (w *Writer) Consumed() int64 {
	return w.consumed
}

// Written returns the number of bytes written to the destination, envelope headers included.
func (w *Writer) Written() int64 {
	return w.written
}

// flushChunk compresses the buffered chunk and writes its envelope.
func (w *Writer) flushChunk() error {
	var err error
	w.out, err = appendEnvelope(w.out[:0], w.buf, &w.opts)
	if err != nil {
		w.err = err
		return err
	}

	if err := writeFull(w.dst, w.out); err != nil {
		w.err = err
		return err
	}

	w.index.add(len(w.buf), len(w.out)-EnvelopeHeaderSize)
	w.consumed += int64(len(w.buf))
	w.written += int64(len(w.out))
	w.buf = w.buf[:0]

	return nil
}

// appendEnvelope compresses chunk and appends its envelope to dst.
func appendEnvelope(dst, chunk []byte, opts *CompressOptions) ([]byte, error) {
	if len(chunk) > MaxChunkSize {
		return dst, fmt.Errorf("%w: chunk of %d bytes", ErrInvalidChunkSize, len(chunk))
	}

	f, err := Encode(chunk, opts)
	if err != nil {
		return dst, err
	}

	size := f.Size()
	if size > MaxChunkSize {
		return dst, fmt.Errorf("%w: %d bytes for a %d byte chunk", ErrFrameTooLarge, size, len(chunk))
	}

	dst = binary.BigEndian.AppendUint16(dst, uint16(len(chunk))) // #nosec G115 -- checked above
	dst = binary.BigEndian.AppendUint16(dst, uint16(size))       // #nosec G115 -- checked above

	return f.AppendBinary(dst)
}

// writeFull writes p to w and reports a sink that accepts fewer bytes as ErrShortWrite.
func writeFull(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(p))
	}

	return nil
}

// CompressStream reads src to EOF and writes the chunked container to dst.
// It returns the number of input bytes consumed and output bytes written (envelopes included).
// Options nil means DefaultCompressOptions().
func CompressStream(dst io.Writer, src io.Reader, opts *CompressOptions) (consumed, written int64, err error) {
	if src == nil {
		return 0, 0, ErrNilReader
	}

	w, err := NewWriter(dst, opts)
	if err != nil {
		return 0, 0, err
	}

	if _, err := w.ReadFrom(src); err != nil {
		return w.Consumed(), w.Written(), err
	}
	if err := w.Close(); err != nil {
		return w.Consumed(), w.Written(), err
	}

	return w.Consumed(), w.Written(), nil
}
