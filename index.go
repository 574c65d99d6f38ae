package alzw

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
)

// Index sidecar layout: magic, u32 BE chunk count, then per chunk
// [original length u16 BE][frame length u16 BE]. Offsets are derived on load.
var indexMagic = []byte("AZIX")

const indexHeaderSize = 8

// IndexEntry locates one chunk in both the original and the compressed stream.
type IndexEntry struct {
	OriginalOffset   int64 // Offset of the chunk's first byte in the original data.
	CompressedOffset int64 // Offset of the chunk's envelope header in the container.
	OriginalLen      int   // Decoded chunk length.
	FrameLen         int   // Frame length, envelope header excluded.
}

// Index is a directory of chunk boundaries for random access into a chunked container.
// It is kept beside the container rather than recovered by scanning envelopes.
type Index struct {
	entries []IndexEntry
}

// Len returns the number of chunks.
func (x *Index) Len() int {
	return len(x.entries)
}

// Entry returns chunk i.
func (x *Index) Entry(i int) IndexEntry {
	return x.entries[i]
}

// Size returns the total original length.
func (x *Index) Size() int64 {
	if len(x.entries) == 0 {
		return 0
	}

	last := x.entries[len(x.entries)-1]

	return last.OriginalOffset + int64(last.OriginalLen)
}

// CompressedSize returns the total container length, envelope headers included.
func (x *Index) CompressedSize() int64 {
	if len(x.entries) == 0 {
		return 0
	}

	last := x.entries[len(x.entries)-1]

	return last.CompressedOffset + EnvelopeHeaderSize + int64(last.FrameLen)
}

// Find returns the chunk holding original offset off.
func (x *Index) Find(off int64) (int, bool) {
	if off < 0 || off >= x.Size() {
		return 0, false
	}

	i := sort.Search(len(x.entries), func(i int) bool {
		e := x.entries[i]
		return e.OriginalOffset+int64(e.OriginalLen) > off
	})

	return i, i < len(x.entries)
}

// add appends a chunk following the last one.
func (x *Index) add(origLen, frameLen int) {
	x.entries = append(x.entries, IndexEntry{
		OriginalOffset:   x.Size(),
		CompressedOffset: x.CompressedSize(),
		OriginalLen:      origLen,
		FrameLen:         frameLen,
	})
}

// MarshalBinary encodes the index sidecar.
func (x *Index) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, indexHeaderSize+EnvelopeHeaderSize*len(x.entries))
	out = append(out, indexMagic...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(x.entries))) // #nosec G115 -- chunk count fits u32

	for _, e := range x.entries {
		out = binary.BigEndian.AppendUint16(out, uint16(e.OriginalLen)) // #nosec G115 -- bounded by MaxChunkSize
		out = binary.BigEndian.AppendUint16(out, uint16(e.FrameLen))    // #nosec G115 -- bounded by MaxChunkSize
	}

	return out, nil
}

// UnmarshalBinary decodes an index sidecar, replacing the contents of x.
func (x *Index) UnmarshalBinary(data []byte) error {
	if len(data) < indexHeaderSize || !bytes.Equal(data[:4], indexMagic) {
		return fmt.Errorf("%w: missing header", ErrBadIndex)
	}

	count := int64(binary.BigEndian.Uint32(data[4:8]))
	if int64(len(data)-indexHeaderSize) != count*EnvelopeHeaderSize {
		return fmt.Errorf("%w: %d chunks need %d bytes, have %d", ErrBadIndex, count, count*EnvelopeHeaderSize, len(data)-indexHeaderSize)
	}

	x.entries = make([]IndexEntry, 0, count)
	for p := indexHeaderSize; p < len(data); p += EnvelopeHeaderSize {
		x.add(int(binary.BigEndian.Uint16(data[p:])), int(binary.BigEndian.Uint16(data[p+2:])))
	}

	return nil
}

// WriteTo writes the index sidecar to w.
func (x *Index) WriteTo(w io.Writer) (int64, error) {
	data, err := x.MarshalBinary()
	if err != nil {
		return 0, err
	}
	if err := writeFull(w, data); err != nil {
		return 0, err
	}

	return int64(len(data)), nil
}

// BuildIndex rebuilds the chunk directory of a container by walking its envelope headers.
// Frame bodies are skipped with Seek when r supports it and discarded otherwise.
func BuildIndex(r io.Reader) (*Index, error) {
	if r == nil {
		return nil, ErrNilReader
	}

	seeker, _ := r.(io.Seeker)
	x := &Index{}
	hdr := make([]byte, EnvelopeHeaderSize)
	for {
		n, err := io.ReadFull(r, hdr)
		if errors.Is(err, io.EOF) {
			return x, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: chunk %d header has %d of %d bytes", ErrTruncatedEnvelope, x.Len(), n, EnvelopeHeaderSize)
		}
		if err != nil {
			return nil, err
		}

		origLen := int(binary.BigEndian.Uint16(hdr[0:2]))
		frameLen := int(binary.BigEndian.Uint16(hdr[2:4]))

		if err := skipFrame(r, seeker, int64(frameLen)); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", x.Len(), err)
		}

		x.add(origLen, frameLen)
	}
}

// skipFrame advances r past n frame bytes.
func skipFrame(r io.Reader, seeker io.Seeker, n int64) error {
	if seeker != nil {
		cur, err := seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		end, err := seeker.Seek(0, io.SeekEnd)
		if err != nil {
			return err
		}
		if end-cur < n {
			return fmt.Errorf("%w: frame missing %d bytes", ErrTruncatedEnvelope, n-(end-cur))
		}
		_, err = seeker.Seek(cur+n, io.SeekStart)

		return err
	}

	skipped, err := io.CopyN(io.Discard, r, n)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: frame missing %d bytes", ErrTruncatedEnvelope, n-skipped)
	}

	return err
}

// BuildIndexAt rebuilds the chunk directory of a container of the given size,
// reading only envelope headers.
func BuildIndexAt(r io.ReaderAt, size int64) (*Index, error) {
	if r == nil {
		return nil, ErrNilReader
	}

	x := &Index{}
	hdr := make([]byte, EnvelopeHeaderSize)
	for off := int64(0); off < size; {
		if size-off < EnvelopeHeaderSize {
			return nil, fmt.Errorf("%w: chunk %d header has %d of %d bytes", ErrTruncatedEnvelope, x.Len(), size-off, EnvelopeHeaderSize)
		}
		if err := readFullAt(r, hdr, off); err != nil {
			return nil, err
		}

		origLen := int(binary.BigEndian.Uint16(hdr[0:2]))
		frameLen := int(binary.BigEndian.Uint16(hdr[2:4]))
		off += EnvelopeHeaderSize + int64(frameLen)
		if off > size {
			return nil, fmt.Errorf("%w: chunk %d frame missing %d bytes", ErrTruncatedEnvelope, x.Len(), off-size)
		}

		x.add(origLen, frameLen)
	}

	return x, nil
}
