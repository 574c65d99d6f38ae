package alzw

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math/rand/v2"
	"testing"
	"testing/iotest"
)

// sampleData returns size pseudo-random bytes drawn from a small alphabet.
func sampleData(size, symbols int, seed uint64) []byte {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	data := make([]byte, size)
	for i := range data {
		data[i] = byte('a' + rng.IntN(symbols))
	}

	return data
}

func TestStreamRoundTripChunkSizes(t *testing.T) {
	input := sampleData(10000, 6, 1)
	for _, chunk := range []int{1, 2, 7, 255, 256, 1000, 4096, DefaultChunkSize, MaxChunkSize} {
		var comp bytes.Buffer
		consumed, written, err := CompressStream(&comp, bytes.NewReader(input), &CompressOptions{ChunkSize: chunk})
		if err != nil {
			t.Fatalf("chunk=%d: %v", chunk, err)
		}
		if consumed != int64(len(input)) {
			t.Fatalf("chunk=%d: consumed %d, want %d", chunk, consumed, len(input))
		}
		if written != int64(comp.Len()) {
			t.Fatalf("chunk=%d: written %d, buffer %d", chunk, written, comp.Len())
		}

		var origSum int
		envs := comp.Bytes()
		for len(envs) > 0 {
			origSum += int(binary.BigEndian.Uint16(envs[0:2]))
			envs = envs[EnvelopeHeaderSize+int(binary.BigEndian.Uint16(envs[2:4])):]
		}
		if origSum != len(input) {
			t.Fatalf("chunk=%d: original lengths sum to %d, want %d", chunk, origSum, len(input))
		}

		var out bytes.Buffer
		read, decoded, err := DecompressStream(&out, bytes.NewReader(comp.Bytes()), nil)
		if err != nil {
			t.Fatalf("chunk=%d: %v", chunk, err)
		}
		if read != written || decoded != consumed {
			t.Fatalf("chunk=%d: read=%d written=%d decoded=%d consumed=%d", chunk, read, written, decoded, consumed)
		}
		if !bytes.Equal(input, out.Bytes()) {
			t.Fatalf("chunk=%d: round trip mismatch", chunk)
		}
	}
}

func TestStreamKnownEnvelope(t *testing.T) {
	var comp bytes.Buffer
	if _, _, err := CompressStream(&comp, bytes.NewReader([]byte("TOBEORNOTTOBEORTOBEORNOT#")), nil); err != nil {
		t.Fatal(err)
	}

	want := []byte("\x00\x19\x00\x19\x07TOBERN#\x01\x02\x03\x04\x02\x05\x06\x02\x01\x08\n\x0c\x11\x0b\r\x0f\x07")
	if !bytes.Equal(comp.Bytes(), want) {
		t.Fatalf("got %x, want %x", comp.Bytes(), want)
	}
}

func TestStreamEmpty(t *testing.T) {
	var comp bytes.Buffer
	consumed, written, err := CompressStream(&comp, bytes.NewReader(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != 0 || written != 0 || comp.Len() != 0 {
		t.Fatalf("consumed=%d written=%d len=%d", consumed, written, comp.Len())
	}

	var out bytes.Buffer
	if _, _, err := DecompressStream(&out, bytes.NewReader(nil), nil); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Fatalf("got %d bytes", out.Len())
	}
}

func TestReaderCrossReadBoundaries(t *testing.T) {
	input := sampleData(5000, 3, 2)
	var comp bytes.Buffer
	if _, _, err := CompressStream(&comp, bytes.NewReader(input), &CompressOptions{ChunkSize: 300}); err != nil {
		t.Fatal(err)
	}

	sources := map[string]func() io.Reader{
		"one byte": func() io.Reader { return iotest.OneByteReader(bytes.NewReader(comp.Bytes())) },
		"half":     func() io.Reader { return iotest.HalfReader(bytes.NewReader(comp.Bytes())) },
		"data err": func() io.Reader { return iotest.DataErrReader(bytes.NewReader(comp.Bytes())) },
		"whole":    func() io.Reader { return bytes.NewReader(comp.Bytes()) },
		"multi seg": func() io.Reader {
			return io.MultiReader(bytes.NewReader(comp.Bytes()[:5]), bytes.NewReader(comp.Bytes()[5:]))
		},
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			out, err := io.ReadAll(NewReader(src(), nil))
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(input, out) {
				t.Fatal("round trip mismatch")
			}
		})
	}
}

func TestReaderIOTest(t *testing.T) {
	input := sampleData(3000, 4, 3)
	var comp bytes.Buffer
	if _, _, err := CompressStream(&comp, bytes.NewReader(input), &CompressOptions{ChunkSize: 512}); err != nil {
		t.Fatal(err)
	}

	if err := iotest.TestReader(NewReader(bytes.NewReader(comp.Bytes()), nil), input); err != nil {
		t.Fatal(err)
	}
}

func TestReaderTruncated(t *testing.T) {
	input := sampleData(2000, 4, 4)
	var comp bytes.Buffer
	if _, _, err := CompressStream(&comp, bytes.NewReader(input), &CompressOptions{ChunkSize: 700}); err != nil {
		t.Fatal(err)
	}
	data := comp.Bytes()

	for _, cut := range []int{1, 3, 5, len(data) - 1} {
		_, _, err := DecompressStream(io.Discard, bytes.NewReader(data[:cut]), nil)
		if !errors.Is(err, ErrTruncatedEnvelope) {
			t.Fatalf("cut=%d: want ErrTruncatedEnvelope, got %v", cut, err)
		}
	}
}

func TestReaderLengthMismatch(t *testing.T) {
	var comp bytes.Buffer
	if _, _, err := CompressStream(&comp, bytes.NewReader([]byte("BOBOBOBO")), nil); err != nil {
		t.Fatal(err)
	}
	data := comp.Bytes()

	short := bytes.Clone(data)
	binary.BigEndian.PutUint16(short[0:2], 7)
	if _, _, err := DecompressStream(io.Discard, bytes.NewReader(short), nil); !errors.Is(err, ErrMalformedFrame) {
		t.Fatalf("want ErrMalformedFrame, got %v", err)
	}

	long := bytes.Clone(data)
	binary.BigEndian.PutUint16(long[0:2], 9)
	if _, _, err := DecompressStream(io.Discard, bytes.NewReader(long), nil); !errors.Is(err, ErrMalformedFrame) {
		t.Fatalf("want ErrMalformedFrame, got %v", err)
	}
}

func TestReaderMalformedChunk(t *testing.T) {
	stream := []byte("\x00\x02\x00\x04\x02BO\x05")
	_, err := io.ReadAll(NewReader(bytes.NewReader(stream), nil))
	if !errors.Is(err, ErrMalformedFrame) {
		t.Fatalf("want ErrMalformedFrame, got %v", err)
	}
}

func TestReaderEmptyEnvelope(t *testing.T) {
	// A zero-length chunk is valid and decodes to nothing.
	stream := []byte("\x00\x00\x00\x00\x00\x04\x00\x06\x02BO\x01\x02\x03")
	out, err := io.ReadAll(NewReader(bytes.NewReader(stream), nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "BOBO" {
		t.Fatalf("got %q", out)
	}
}

func TestReaderMaxOutputSize(t *testing.T) {
	var comp bytes.Buffer
	if _, _, err := CompressStream(&comp, bytes.NewReader(sampleData(1000, 4, 5)), &CompressOptions{ChunkSize: 500}); err != nil {
		t.Fatal(err)
	}

	_, _, err := DecompressStream(io.Discard, bytes.NewReader(comp.Bytes()), &Options{MaxOutputSize: 499})
	if !errors.Is(err, ErrOutputTooLarge) {
		t.Fatalf("want ErrOutputTooLarge, got %v", err)
	}
}

func TestNilStreams(t *testing.T) {
	if _, _, err := CompressStream(io.Discard, nil, nil); !errors.Is(err, ErrNilReader) {
		t.Fatalf("want ErrNilReader, got %v", err)
	}
	if _, _, err := CompressStream(nil, bytes.NewReader(nil), nil); !errors.Is(err, ErrNilWriter) {
		t.Fatalf("want ErrNilWriter, got %v", err)
	}
	if _, err := NewReader(nil, nil).Read(make([]byte, 1)); !errors.Is(err, ErrNilReader) {
		t.Fatalf("want ErrNilReader, got %v", err)
	}
}

func TestInvalidChunkSize(t *testing.T) {
	for _, size := range []int{-1, MaxChunkSize + 1} {
		if _, err := NewWriter(io.Discard, &CompressOptions{ChunkSize: size}); !errors.Is(err, ErrInvalidChunkSize) {
			t.Fatalf("size=%d: want ErrInvalidChunkSize, got %v", size, err)
		}
	}
}

// shortWriter accepts at most limit bytes per call without reporting an error.
type shortWriter struct {
	limit int
}

func (w shortWriter) Write(p []byte) (int, error) {
	return min(len(p), w.limit), nil
}

func TestShortWrite(t *testing.T) {
	input := []byte("BOBOBOBOBOBO")
	if _, _, err := CompressStream(shortWriter{limit: 3}, bytes.NewReader(input), nil); !errors.Is(err, ErrShortWrite) {
		t.Fatalf("compress: want ErrShortWrite, got %v", err)
	}

	var comp bytes.Buffer
	if _, _, err := CompressStream(&comp, bytes.NewReader(input), nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := DecompressStream(shortWriter{limit: 3}, bytes.NewReader(comp.Bytes()), nil); !errors.Is(err, ErrShortWrite) {
		t.Fatalf("decompress: want ErrShortWrite, got %v", err)
	}
}

func TestWriterSmallWrites(t *testing.T) {
	input := sampleData(3000, 5, 6)
	var comp bytes.Buffer
	w, err := NewWriter(&comp, &CompressOptions{ChunkSize: 256})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(input); i += 7 {
		if _, err := w.Write(input[i:min(i+7, len(input))]); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Fatalf("want ErrClosed, got %v", err)
	}

	if w.Index().Len() != (len(input)+255)/256 {
		t.Fatalf("got %d chunks", w.Index().Len())
	}

	out, err := io.ReadAll(NewReader(&comp, nil))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(input, out) {
		t.Fatal("round trip mismatch")
	}
}

func TestWriterFlush(t *testing.T) {
	var comp bytes.Buffer
	w, err := NewWriter(&comp, nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, part := range []string{"BOBO", "TOBE#", "aaaa"} {
		if _, err := w.Write([]byte(part)); err != nil {
			t.Fatal(err)
		}
		if err := w.Flush(); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if w.Index().Len() != 3 {
		t.Fatalf("got %d chunks, want 3", w.Index().Len())
	}

	z := NewReader(&comp, nil)
	out, err := io.ReadAll(z)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "BOBOTOBE#aaaa" {
		t.Fatalf("got %q", out)
	}
	if z.Chunks() != 3 {
		t.Fatalf("decoded %d chunks", z.Chunks())
	}
}

func TestWriterStrictChunkOverflow(t *testing.T) {
	_, _, err := CompressStream(io.Discard, bytes.NewReader(sampleData(8000, 4, 7)), &CompressOptions{Overflow: OverflowError, ChunkSize: 8000})
	if !errors.Is(err, ErrDictionaryOverflow) {
		t.Fatalf("want ErrDictionaryOverflow, got %v", err)
	}

	// Chunks small enough for the dictionary succeed under the same policy.
	if _, _, err := CompressStream(io.Discard, bytes.NewReader(sampleData(8000, 4, 7)), &CompressOptions{Overflow: OverflowError, ChunkSize: 200}); err != nil {
		t.Fatal(err)
	}
}

func TestReaderReset(t *testing.T) {
	var a, b bytes.Buffer
	if _, _, err := CompressStream(&a, bytes.NewReader([]byte("first stream")), nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := CompressStream(&b, bytes.NewReader([]byte("second stream")), nil); err != nil {
		t.Fatal(err)
	}

	z := NewReader(&a, nil)
	if _, err := io.ReadAll(z); err != nil {
		t.Fatal(err)
	}
	z.Reset(&b)
	out, err := io.ReadAll(z)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "second stream" {
		t.Fatalf("got %q", out)
	}
}
