package alzw

// Encode compresses src into a Frame. Options nil means DefaultCompressOptions().
// Input whose bytes are all distinct (including empty input) yields a frame with no codes.
func Encode(src []byte, opts *CompressOptions) (Frame, error) {
	if opts == nil {
		opts = DefaultCompressOptions()
	}

	alphabet, err := ScanAlphabet(src)
	if err != nil {
		return Frame{}, err
	}

	// Every byte is unique: the alphabet alone reproduces the input.
	if len(alphabet) == len(src) {
		return Frame{Alphabet: alphabet}, nil
	}

	dict := newEncDict(alphabet, opts.Overflow)
	codes := make([]byte, 0, len(src)/2+1)

	cur := dict.roots[src[0]]
	for i := 1; i < len(src); i++ {
		b := src[i]
		if next := dict.extend(cur, b); next != 0 {
			cur = next
			continue
		}

		codes = append(codes, cur)
		if err := dict.add(cur, b, i); err != nil {
			return Frame{}, err
		}
		cur = dict.roots[b]
	}
	codes = append(codes, cur)

	return Frame{Alphabet: alphabet, Codes: codes}, nil
}

// Compress compresses src into one serialized frame. Options nil means DefaultCompressOptions().
// Empty input compresses to an empty frame.
func Compress(src []byte, opts *CompressOptions) ([]byte, error) {
	f, err := Encode(src, opts)
	if err != nil {
		return nil, err
	}

	return f.AppendBinary(make([]byte, 0, f.Size()))
}
