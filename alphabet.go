package alzw

import "fmt"

// ScanAlphabet returns the distinct bytes of data in order of first appearance.
// It fails with ErrAlphabetOverflow when data uses all 256 byte values.
func ScanAlphabet(data []byte) ([]byte, error) {
	var seen [256]bool
	alphabet := make([]byte, 0, 16)
	for _, b := range data {
		if seen[b] {
			continue
		}

		if len(alphabet) == MaxAlphabet {
			return nil, fmt.Errorf("%w: symbol 0x%02x is the 256th", ErrAlphabetOverflow, b)
		}

		seen[b] = true
		alphabet = append(alphabet, b)
	}

	return alphabet, nil
}
