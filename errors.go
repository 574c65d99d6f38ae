// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Maxim Levchenko (WoozyMasta)
// Source: github.com/woozymasta/alzw

package alzw

import "errors"

// Package errors. Use errors.New for static messages, fmt.Errorf when values are needed.
var (
	ErrAlphabetOverflow   = errors.New("alphabet exceeds 255 distinct symbols")
	ErrDictionaryOverflow = errors.New("dictionary code exceeds single byte width")
	ErrMalformedFrame     = errors.New("malformed alzw frame")
	ErrTruncatedEnvelope  = errors.New("truncated chunk envelope")
	ErrShortWrite         = errors.New("short write")
	ErrNilReader          = errors.New("reader is nil")
	ErrNilWriter          = errors.New("writer is nil")
	ErrInvalidChunkSize   = errors.New("chunk size must be in range 1..65535")
	ErrOutputTooLarge     = errors.New("decoded output exceeds configured maximum")
	ErrFrameTooLarge      = errors.New("frame exceeds 65535 bytes")
	ErrClosed             = errors.New("writer is closed")
	ErrBadIndex           = errors.New("malformed chunk index")
	ErrOffsetOutOfRange   = errors.New("offset out of range")
)
