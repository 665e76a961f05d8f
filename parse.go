// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package moguchat

import (
	"encoding/binary"
	"errors"
)

// Errors returned by ParseFrame and ReadHeader on malformed input.
var (
	ErrHeaderLengthMSB         = errors.New("header error: the most significant bit must be 0")
	ErrHeaderLengthUnexpected  = errors.New("header error: unexpected payload length")
	ErrProtocolNonZeroRsv      = errors.New("protocol error: non-zero rsv bits with no extension negotiated")
	ErrProtocolControlNotFinal = errors.New("protocol error: control frame is fragmented")
	ErrProtocolControlTooBig   = errors.New("protocol error: control frame payload exceeds 125 bytes")
)

// ParseFrame decodes at most one frame from the front of p.
//
// It returns the decoded frame and the number of bytes it occupied in p.
// When p does not yet contain a complete frame (header, extended length,
// masking key or payload still missing) it returns n == 0 with a nil error;
// the caller accumulates more bytes and retries, never discarding data. A
// single buffer may hold several frames, so callers loop, slicing off n
// bytes per call, until n == 0.
//
// The returned payload is an unmasked copy and does not alias p.
func ParseFrame(p []byte) (f Frame, n int, err error) {
	if len(p) < 2 {
		return Frame{}, 0, nil
	}
	f.Header.Fin = p[0]&0x80 != 0
	f.Header.Rsv = (p[0] & 0x70) >> 4
	f.Header.OpCode = OpCode(p[0] & 0x0f)
	f.Header.Masked = p[1]&0x80 != 0

	length := int64(p[1] & 0x7f)
	offset := 2
	switch length {
	case 126:
		if len(p) < offset+2 {
			return Frame{}, 0, nil
		}
		length = int64(binary.BigEndian.Uint16(p[offset:]))
		offset += 2
	case 127:
		if len(p) < offset+8 {
			return Frame{}, 0, nil
		}
		u := binary.BigEndian.Uint64(p[offset:])
		if u&(1<<63) != 0 {
			return Frame{}, 0, ErrHeaderLengthMSB
		}
		length = int64(u)
		offset += 8
	}

	if f.Header.Rsv != 0 {
		return Frame{}, 0, ErrProtocolNonZeroRsv
	}
	if f.Header.OpCode.IsControl() {
		if !f.Header.Fin {
			return Frame{}, 0, ErrProtocolControlNotFinal
		}
		if length > 125 {
			return Frame{}, 0, ErrProtocolControlTooBig
		}
	}

	if f.Header.Masked {
		if len(p) < offset+4 {
			return Frame{}, 0, nil
		}
		copy(f.Header.Mask[:], p[offset:])
		offset += 4
	}

	// Compare against the remaining bytes rather than summing offset and
	// length: a 64-bit length near MaxInt64 would overflow the sum.
	if length > int64(len(p)-offset) {
		return Frame{}, 0, nil
	}

	f.Header.Length = length
	f.Payload = make([]byte, length)
	copy(f.Payload, p[offset:int64(offset)+length])
	if f.Header.Masked {
		Cipher(f.Payload, f.Header.Mask, 0)
	}
	return f, offset + int(length), nil
}
