package alzw

import "fmt"

// Decompress decodes one serialized frame. Options nil means DefaultOptions (no output limit).
func Decompress(src []byte, opts *Options) ([]byte, error) {
	f, err := ParseFrame(src)
	if err != nil {
		return nil, err
	}

	return f.Decode(nil, opts)
}

// Decode appends the bytes encoded by f to dst and returns the extended buffer.
// Options nil means DefaultOptions. A code that is neither assigned nor exactly the
// next code to be assigned fails with ErrMalformedFrame.
func (f Frame) Decode(dst []byte, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	dict, err := newDecDict(f.Alphabet)
	if err != nil {
		return nil, err
	}

	base := len(dst)
	limit := opts.MaxOutputSize
	// Check that n more output bytes fit under the configured limit.
	checkLimit := func(n int) error {
		if limit > 0 && len(dst)-base+n > limit {
			return fmt.Errorf("%w: limit=%d", ErrOutputTooLarge, limit)
		}

		return nil
	}

	// Without codes the input was the alphabet itself.
	if len(f.Codes) == 0 {
		if err := checkLimit(len(f.Alphabet)); err != nil {
			return nil, err
		}

		return append(dst, f.Alphabet...), nil
	}

	prev := f.Codes[0]
	if !dict.has(prev) {
		return nil, fmt.Errorf("%w: code %d at position 0 with %d seed symbols", ErrMalformedFrame, prev, len(f.Alphabet))
	}
	if err := checkLimit(1); err != nil {
		return nil, err
	}
	dst = dict.appendSeq(dst, prev)

	for i := 1; i < len(f.Codes); i++ {
		code := f.Codes[i]

		var first byte
		var length int
		switch {
		case dict.has(code):
			e := dict.entry(code)
			first, length = e.first, int(e.length)
		case int(code) == dict.nextCode():
			// Sequence learned by the encoder on this very step: previous + previous[0].
			p := dict.entry(prev)
			first, length = p.first, int(p.length)+1
		default:
			return nil, fmt.Errorf("%w: code %d at position %d, next code %d", ErrMalformedFrame, code, i, dict.nextCode())
		}

		if err := checkLimit(length); err != nil {
			return nil, err
		}

		dict.add(prev, first)
		dst = dict.appendSeq(dst, code)
		prev = code
	}

	return dst, nil
}
