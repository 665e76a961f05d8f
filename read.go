// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package moguchat

import (
	"bytes"
	"encoding/binary"
	"io"
)

// ReadHeader reads a frame header from r.
func ReadHeader(r io.Reader) (h Header, err error) {
	var bts [MaxHeaderSize - 2]byte
	if _, err = io.ReadFull(r, bts[:2]); err != nil {
		return h, err
	}
	h.Fin = bts[0]&0x80 != 0
	h.Rsv = (bts[0] & 0x70) >> 4
	h.OpCode = OpCode(bts[0] & 0x0f)
	h.Masked = bts[1]&0x80 != 0

	length := bts[1] & 0x7f

	var extra int
	switch length {
	case 126:
		extra = 2
	case 127:
		extra = 8
	}
	if h.Masked {
		extra += 4
	}
	if extra > 0 {
		if _, err = io.ReadFull(r, bts[:extra]); err != nil {
			return h, err
		}
	}

	var rest []byte
	switch length {
	case 126:
		h.Length = int64(binary.BigEndian.Uint16(bts[:2]))
		rest = bts[2:extra]
	case 127:
		u := binary.BigEndian.Uint64(bts[:8])
		if u&(1<<63) != 0 {
			return h, ErrHeaderLengthMSB
		}
		h.Length = int64(u)
		rest = bts[8:extra]
	default:
		h.Length = int64(length)
		rest = bts[:extra]
	}
	if h.Masked {
		copy(h.Mask[:], rest)
	}
	return h, nil
}

// ReadFrame reads a whole frame from r. The payload is returned as read from
// the wire; masked frames stay masked (see UnmaskFrame).
func ReadFrame(r io.Reader) (f Frame, err error) {
	f.Header, err = ReadHeader(r)
	if err != nil {
		return f, err
	}
	if f.Header.Length > 0 {
		// Sized by what the reader actually yields, not by the header: an
		// absurd advertised length must end in a read error, not a huge
		// allocation.
		var buf bytes.Buffer
		if _, err = io.CopyN(&buf, r, f.Header.Length); err != nil {
			return f, err
		}
		f.Payload = buf.Bytes()
	}
	return f, err
}

// MustReadFrame is like ReadFrame but panics on error.
func MustReadFrame(r io.Reader) Frame {
	f, err := ReadFrame(r)
	if err != nil {
		panic(err)
	}
	return f
}
