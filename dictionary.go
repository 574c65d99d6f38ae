package alzw

import "fmt"

// encDict is the encoder dictionary. Code c lives at entries[c-1]; codes are never reassigned,
// so the next unused code is always len(entries)+1.
type encDict struct {
	roots   [256]uint8   // symbol -> seed code, 0 when the symbol is not in the alphabet
	entries [][256]uint8 // entries[c-1][b] = code of sequence(c)+b, 0 when absent
	policy  OverflowPolicy
}

// newEncDict seeds codes 1..N from alphabet.
func newEncDict(alphabet []byte, policy OverflowPolicy) *encDict {
	d := &encDict{
		entries: make([][256]uint8, len(alphabet), MaxCode),
		policy:  policy,
	}
	for i, b := range alphabet {
		d.roots[b] = uint8(i + 1) // #nosec G115 -- alphabet length is capped at MaxAlphabet
	}

	return d
}

// extend returns the code for sequence(code)+b, or 0 if it is not in the dictionary.
func (d *encDict) extend(code uint8, b byte) uint8 {
	return d.entries[code-1][b]
}

// add learns sequence(code)+b under the next unused code. pos is the input offset,
// reported when the overflow policy rejects the insertion.
func (d *encDict) add(code uint8, b byte, pos int) error {
	next := len(d.entries) + 1
	if next > MaxCode {
		if d.policy == OverflowError {
			return fmt.Errorf("%w: code %d needed at input offset %d", ErrDictionaryOverflow, next, pos)
		}

		return nil
	}

	d.entries[code-1][b] = uint8(next) // #nosec G115 -- next <= MaxCode
	d.entries = append(d.entries, [256]uint8{})

	return nil
}

// decEntry describes one decoder dictionary sequence as its prefix code plus a final byte.
type decEntry struct {
	prefix uint8  // code of the sequence without its last byte, 0 for seed symbols
	last   byte   // final byte of the sequence
	first  byte   // first byte of the sequence
	length uint16 // sequence length in bytes
}

// decDict is the decoder dictionary, built in the same code order as encDict.
type decDict struct {
	entries []decEntry // entries[c-1] describes code c
}

// newDecDict seeds codes 1..N from alphabet. A repeated symbol cannot come from the
// encoder and is reported as ErrMalformedFrame.
func newDecDict(alphabet []byte) (*decDict, error) {
	if len(alphabet) > MaxAlphabet {
		return nil, fmt.Errorf("%w: alphabet size %d", ErrMalformedFrame, len(alphabet))
	}

	var seen [256]bool
	d := &decDict{entries: make([]decEntry, 0, MaxCode)}
	for _, b := range alphabet {
		if seen[b] {
			return nil, fmt.Errorf("%w: symbol 0x%02x repeated in alphabet", ErrMalformedFrame, b)
		}
		seen[b] = true
		d.entries = append(d.entries, decEntry{last: b, first: b, length: 1})
	}

	return d, nil
}

// nextCode returns the next unused code.
func (d *decDict) nextCode() int {
	return len(d.entries) + 1
}

// has reports whether code is assigned.
func (d *decDict) has(code uint8) bool {
	return code != 0 && int(code) <= len(d.entries)
}

// entry returns the entry for an assigned code.
func (d *decDict) entry(code uint8) decEntry {
	return d.entries[code-1]
}

// add learns sequence(prefix)+b. Once every code is in use the dictionary is frozen,
// which mirrors both encoder overflow policies.
func (d *decDict) add(prefix uint8, b byte) {
	if d.nextCode() > MaxCode {
		return
	}

	p := d.entries[prefix-1]
	d.entries = append(d.entries, decEntry{
		prefix: prefix,
		last:   b,
		first:  p.first,
		length: p.length + 1,
	})
}

// appendSeq appends the bytes of code's sequence to dst by walking the prefix chain backwards.
func (d *decDict) appendSeq(dst []byte, code uint8) []byte {
	n := int(d.entries[code-1].length)
	start := len(dst)
	dst = append(dst, make([]byte, n)...)

	c := code
	for i := start + n - 1; i >= start; i-- {
		e := d.entries[c-1]
		dst[i] = e.last
		c = e.prefix
	}

	return dst
}
