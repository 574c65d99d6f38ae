package alzw

import "fmt"

// Frame is one self-contained compressed unit: the alphabet in first-seen order
// followed by the code sequence. Serialized as [N][alphabet...][codes...], one byte each.
// An empty alphabet serializes to zero bytes.
type Frame struct {
	Alphabet []byte // Distinct input symbols; symbol Alphabet[i] has code i+1.
	Codes    []byte // LZW codes; empty when the input was exactly the alphabet.
}

// Size returns the serialized length of f.
func (f Frame) Size() int {
	if len(f.Alphabet) == 0 {
		return 0
	}

	return 1 + len(f.Alphabet) + len(f.Codes)
}

// AppendBinary appends the serialized frame to dst.
func (f Frame) AppendBinary(dst []byte) ([]byte, error) {
	n := len(f.Alphabet)
	if n > MaxAlphabet {
		return dst, fmt.Errorf("%w: alphabet size %d", ErrAlphabetOverflow, n)
	}
	if n == 0 {
		if len(f.Codes) != 0 {
			return dst, fmt.Errorf("%w: %d codes without alphabet", ErrMalformedFrame, len(f.Codes))
		}

		return dst, nil
	}

	dst = append(dst, byte(n)) // #nosec G115 -- n <= MaxAlphabet
	dst = append(dst, f.Alphabet...)

	return append(dst, f.Codes...), nil
}

// MarshalBinary returns the serialized frame.
func (f Frame) MarshalBinary() ([]byte, error) {
	return f.AppendBinary(make([]byte, 0, f.Size()))
}

// ParseFrame splits a serialized frame into alphabet and codes.
// The returned Frame aliases src.
func ParseFrame(src []byte) (Frame, error) {
	if len(src) == 0 {
		return Frame{}, nil
	}

	n := int(src[0])
	if n == 0 {
		if len(src) > 1 {
			return Frame{}, fmt.Errorf("%w: %d bytes after empty alphabet", ErrMalformedFrame, len(src)-1)
		}

		return Frame{}, nil
	}

	if len(src) < 1+n {
		return Frame{}, fmt.Errorf("%w: alphabet needs %d bytes, have %d", ErrMalformedFrame, n, len(src)-1)
	}

	f := Frame{Alphabet: src[1 : 1+n : 1+n]}
	if len(src) > 1+n {
		f.Codes = src[1+n:]
	}

	return f, nil
}

// UnmarshalBinary parses a serialized frame into f, copying data.
func (f *Frame) UnmarshalBinary(data []byte) error {
	parsed, err := ParseFrame(data)
	if err != nil {
		return err
	}

	f.Alphabet = append([]byte(nil), parsed.Alphabet...)
	f.Codes = append([]byte(nil), parsed.Codes...)

	return nil
}
