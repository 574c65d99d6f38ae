package alzw

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/mmap"
)

// ReaderAt provides random access to the original data of a chunked container.
// Only the chunks covering a requested range are decoded. Chunk boundaries come
// from the Index, so ReaderAt holds no mutable state and is safe for concurrent use
// when the underlying io.ReaderAt is.
type ReaderAt struct {
	r      io.ReaderAt
	idx    *Index
	opts   Options
	closer io.Closer
}

// NewReaderAt returns a ReaderAt over container r described by idx. Options nil means DefaultOptions.
func NewReaderAt(r io.ReaderAt, idx *Index, opts *Options) *ReaderAt {
	if opts == nil {
		opts = DefaultOptions()
	}
	if idx == nil {
		idx = &Index{}
	}

	return &ReaderAt{r: r, idx: idx, opts: *opts}
}

// OpenFile memory-maps the container at path. The index is loaded from indexPath,
// or rebuilt from envelope headers when indexPath is empty.
func OpenFile(path, indexPath string, opts *Options) (*ReaderAt, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	var idx *Index
	if indexPath != "" {
		data, err := os.ReadFile(indexPath)
		if err != nil {
			_ = m.Close()
			return nil, err
		}

		idx = &Index{}
		if err := idx.UnmarshalBinary(data); err != nil {
			_ = m.Close()
			return nil, err
		}
		if idx.CompressedSize() != int64(m.Len()) {
			_ = m.Close()
			return nil, fmt.Errorf("%w: index describes %d bytes, container has %d", ErrBadIndex, idx.CompressedSize(), m.Len())
		}
	} else {
		idx, err = BuildIndexAt(m, int64(m.Len()))
		if err != nil {
			_ = m.Close()
			return nil, err
		}
	}

	ra := NewReaderAt(m, idx, opts)
	ra.closer = m

	return ra, nil
}

// Index returns the chunk directory.
func (ra *ReaderAt) Index() *Index {
	return ra.idx
}

// Size returns the original data length.
func (ra *ReaderAt) Size() int64 {
	return ra.idx.Size()
}

// Chunk decodes chunk i.
func (ra *ReaderAt) Chunk(i int) ([]byte, error) {
	if i < 0 || i >= ra.idx.Len() {
		return nil, fmt.Errorf("%w: chunk %d of %d", ErrOffsetOutOfRange, i, ra.idx.Len())
	}

	return ra.decode(nil, ra.idx.Entry(i))
}

// ReadAt reads len(p) bytes of original data starting at off.
func (ra *ReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrOffsetOutOfRange, off)
	}
	if off >= ra.Size() {
		return 0, io.EOF
	}

	i, _ := ra.idx.Find(off)
	var buf []byte
	n := 0
	for n < len(p) && i < ra.idx.Len() {
		e := ra.idx.Entry(i)

		var err error
		buf, err = ra.decode(buf[:0], e)
		if err != nil {
			return n, err
		}

		n += copy(p[n:], buf[off+int64(n)-e.OriginalOffset:])
		i++
	}

	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// Close releases the mapping opened by OpenFile. It is a no-op for NewReaderAt.
func (ra *ReaderAt) Close() error {
	if ra.closer == nil {
		return nil
	}

	return ra.closer.Close()
}

// decode reads one envelope at e.CompressedOffset and decodes its frame into dst.
func (ra *ReaderAt) decode(dst []byte, e IndexEntry) ([]byte, error) {
	env := make([]byte, EnvelopeHeaderSize+e.FrameLen)
	if err := readFullAt(ra.r, env, e.CompressedOffset); err != nil {
		return nil, err
	}

	origLen := int(binary.BigEndian.Uint16(env[0:2]))
	frameLen := int(binary.BigEndian.Uint16(env[2:4]))
	if origLen != e.OriginalLen || frameLen != e.FrameLen {
		return nil, fmt.Errorf("%w: envelope at %d declares %d/%d bytes, index %d/%d",
			ErrBadIndex, e.CompressedOffset, origLen, frameLen, e.OriginalLen, e.FrameLen)
	}

	return decodeChunk(dst, env[EnvelopeHeaderSize:], origLen, &ra.opts)
}

// readFullAt fills p from r at off, treating a short read as a truncated envelope.
func readFullAt(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedEnvelope, len(p), off, n)
	}

	return err
}
