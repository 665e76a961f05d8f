// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package moguchat

import (
	"encoding/binary"
	"io"
	"math"
)

// Constants defined by the wire format.
const (
	// MaxHeaderSize is the maximum size of a frame header: two fixed bytes,
	// an 8-byte extended length and a 4-byte masking key.
	MaxHeaderSize = 14

	len7  = int64(125)
	len16 = int64(math.MaxUint16)
)

func appendHeader(dst []byte, h Header) ([]byte, error) {
	var bts [MaxHeaderSize]byte
	if h.Fin {
		bts[0] |= 0x80
	}
	bts[0] |= h.Rsv << 4
	bts[0] |= byte(h.OpCode)

	var n int
	switch {
	case h.Length < 0:
		return dst, ErrHeaderLengthUnexpected
	case h.Length <= len7:
		bts[1] = byte(h.Length)
		n = 2
	case h.Length <= len16:
		bts[1] = 126
		binary.BigEndian.PutUint16(bts[2:], uint16(h.Length))
		n = 4
	default:
		bts[1] = 127
		binary.BigEndian.PutUint64(bts[2:], uint64(h.Length))
		n = 10
	}
	if h.Masked {
		bts[1] |= 0x80
		n += copy(bts[n:], h.Mask[:])
	}
	return append(dst, bts[:n]...), nil
}

// WriteHeader writes the wire encoding of h into w.
func WriteHeader(w io.Writer, h Header) error {
	bts, err := appendHeader(make([]byte, 0, MaxHeaderSize), h)
	if err != nil {
		return err
	}
	_, err = w.Write(bts)
	return err
}

// WriteFrame writes the wire encoding of f into w. The payload is written as
// is; masked frames are expected to carry an already transformed payload
// (see MaskFrame).
func WriteFrame(w io.Writer, f Frame) error {
	if err := WriteHeader(w, f.Header); err != nil {
		return err
	}
	if len(f.Payload) == 0 {
		// Skip the zero-byte write: it is a no-op for the io.Writer
		// contract, but synchronous transports like net.Pipe block on it
		// until the peer reads.
		return nil
	}
	_, err := w.Write(f.Payload)
	return err
}

// MustWriteFrame is like WriteFrame but panics on error.
func MustWriteFrame(w io.Writer, f Frame) {
	if err := WriteFrame(w, f); err != nil {
		panic(err)
	}
}

// AppendFrame appends the wire encoding of f to dst and returns the extended
// slice. It lets callers reuse scratch buffers across frames.
func AppendFrame(dst []byte, f Frame) ([]byte, error) {
	dst, err := appendHeader(dst, f.Header)
	if err != nil {
		return dst, err
	}
	return append(dst, f.Payload...), nil
}

// CompileFrame returns the wire encoding of f as a fresh byte slice.
func CompileFrame(f Frame) ([]byte, error) {
	return AppendFrame(make([]byte, 0, MaxHeaderSize+len(f.Payload)), f)
}

// MustCompileFrame is like CompileFrame but panics on error.
func MustCompileFrame(f Frame) []byte {
	bts, err := CompileFrame(f)
	if err != nil {
		panic(err)
	}
	return bts
}
