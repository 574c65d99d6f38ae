/*
Package alzw implements Alphabetized LZW compression and decompression.

Alphabetized LZW is an LZW variant that stores the input's distinct symbols in the output,
so the dictionary starts with only the symbols actually used. It works best for small
alphabets over long sequences.

Frame: [N][alphabet: N bytes in first-seen order][codes: one byte each].
Symbol alphabet[i] has code i+1; learned sequences get codes N+1.. in order.
Empty input is an empty frame. Input of only distinct bytes is the alphabet with no codes.
Codes are single bytes, so a frame holds at most 255 dictionary entries. By default the
dictionary freezes once code 255 is assigned; StrictCompressOptions reports
ErrDictionaryOverflow instead. Input using all 256 byte values is ErrAlphabetOverflow.

Chunked container: repeated envelopes [original length u16 BE][frame length u16 BE][frame],
one per chunk of at most ChunkSize input bytes (default 32767). Each chunk restarts its
alphabet and dictionary. An Index sidecar lists chunk lengths for random access.

Use Compress(src, opts) and Decompress(src, opts) for one frame held in memory.
Use Encode(src, opts) and Frame.Decode(dst, opts) to work with alphabet and codes directly.
Use NewWriter(w, opts) or CompressStream(dst, src, opts) to write the chunked container.
Use NewReader(r, opts) or DecompressStream(dst, src, opts) to read it sequentially.
Use OpenFile(path, indexPath, opts) or NewReaderAt(r, idx, opts) for random access.

# Examples

Round-trip compress and decompress:

	enc, err := alzw.Compress(data, nil)
	if err != nil {
		return err
	}
	dec, err := alzw.Decompress(enc, nil)
	if err != nil {
		return err
	}
	// dec equals data

Reject units whose dictionary would outgrow one byte:

	enc, err := alzw.Compress(data, alzw.StrictCompressOptions())
	if errors.Is(err, alzw.ErrDictionaryOverflow) {
		// split the input or use the default freeze policy
	}

Compress a stream and keep its index:

	w, err := alzw.NewWriter(out, &alzw.CompressOptions{ChunkSize: 4096})
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, in); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	_, err = w.Index().WriteTo(indexFile)

Read a range from the middle of a compressed file:

	ra, err := alzw.OpenFile("data.alzw", "data.alzw.idx", nil)
	if err != nil {
		return err
	}
	defer ra.Close()
	buf := make([]byte, 128)
	n, err := ra.ReadAt(buf, 1<<20)
*/
package alzw
