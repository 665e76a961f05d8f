// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package moguchat

import "encoding/binary"

// OpCode represents the operation code of a frame.
type OpCode byte

// Operation codes defined by RFC 6455 section 11.8.
const (
	OpContinuation OpCode = 0x0
	OpText         OpCode = 0x1
	OpBinary       OpCode = 0x2
	OpClose        OpCode = 0x8
	OpPing         OpCode = 0x9
	OpPong         OpCode = 0xa
)

// IsControl reports whether the op is a control frame operation.
func (c OpCode) IsControl() bool { return c&0x8 != 0 }

// IsData reports whether the op is a data frame operation.
func (c OpCode) IsData() bool { return c&0x8 == 0 }

// IsReserved reports whether the op is not defined by the protocol.
func (c OpCode) IsReserved() bool {
	switch c {
	case OpContinuation, OpText, OpBinary, OpClose, OpPing, OpPong:
		return false
	}
	return true
}

// State holds the role of an endpoint on a connection. Frames written by the
// client side must be masked, frames written by the server side must not be.
type State byte

const (
	StateServerSide State = 1 << iota
	StateClientSide
)

func (s State) ServerSide() bool { return s&StateServerSide != 0 }
func (s State) ClientSide() bool { return s&StateClientSide != 0 }

// PrepareFrame applies the role's masking contract to an outgoing frame:
// client-side endpoints mask the payload in place with a fresh random key,
// server-side endpoints send it bare.
func (s State) PrepareFrame(f Frame) Frame {
	if s.ClientSide() {
		return MaskFrameInPlace(f)
	}
	return f
}

// Header represents a frame header.
type Header struct {
	Fin    bool
	Rsv    byte
	OpCode OpCode
	Masked bool
	Mask   [4]byte
	Length int64
}

// Frame represents one unit of the wire protocol.
type Frame struct {
	Header  Header
	Payload []byte
}

// NewFrame creates a frame with the given operation code and payload.
func NewFrame(op OpCode, fin bool, p []byte) Frame {
	return Frame{
		Header: Header{
			Fin:    fin,
			OpCode: op,
			Length: int64(len(p)),
		},
		Payload: p,
	}
}

// NewTextFrame creates a final text frame with p as a payload.
func NewTextFrame(p []byte) Frame {
	return NewFrame(OpText, true, p)
}

// NewBinaryFrame creates a final binary frame with p as a payload.
func NewBinaryFrame(p []byte) Frame {
	return NewFrame(OpBinary, true, p)
}

// NewPingFrame creates a ping frame with p as a payload.
func NewPingFrame(p []byte) Frame {
	return NewFrame(OpPing, true, p)
}

// NewPongFrame creates a pong frame with p as a payload.
func NewPongFrame(p []byte) Frame {
	return NewFrame(OpPong, true, p)
}

// NewCloseFrame creates a close frame with p as a payload. Use
// NewCloseFrameBody to prepare a payload with status code and reason.
func NewCloseFrame(p []byte) Frame {
	return NewFrame(OpClose, true, p)
}

// StatusCode represents the close frame status code.
type StatusCode uint16

// Close status codes defined by RFC 6455 section 11.7.
const (
	StatusNormalClosure   StatusCode = 1000
	StatusGoingAway       StatusCode = 1001
	StatusProtocolError   StatusCode = 1002
	StatusUnsupportedData StatusCode = 1003
	StatusNoStatusRcvd    StatusCode = 1005
	StatusAbnormalClosure StatusCode = 1006
	StatusInvalidPayload  StatusCode = 1007
)

// Empty reports whether the code represents an absent status.
func (s StatusCode) Empty() bool { return s == 0 }

// NewCloseFrameBody builds a close frame payload from status code and reason.
// Note that the maximum length of a control frame payload is 125 bytes; the
// caller keeps the reason short.
func NewCloseFrameBody(code StatusCode, reason string) []byte {
	p := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(p, uint16(code))
	copy(p[2:], reason)
	return p
}

// ParseCloseFrameData parses a close frame payload. An empty payload yields
// StatusNoStatusRcvd as RFC 6455 prescribes for an absent body.
func ParseCloseFrameData(p []byte) (code StatusCode, reason string) {
	if len(p) < 2 {
		return StatusNoStatusRcvd, ""
	}
	code = StatusCode(binary.BigEndian.Uint16(p))
	reason = string(p[2:])
	return code, reason
}

// Cipher applies the masking transform to payload in place. XOR is an
// involution, so the same call both masks and unmasks. The offset is the
// position of payload within the whole frame payload, used when transforming
// a payload in chunks.
func Cipher(payload []byte, mask [4]byte, offset int) {
	for i := range payload {
		payload[i] ^= mask[(offset+i)&3]
	}
}

// MaskFrame returns a frame with masked payload and a randomly generated
// masking key. The payload of f stays untouched.
func MaskFrame(f Frame) Frame {
	return MaskFrameInPlace(Frame{
		Header:  f.Header,
		Payload: append([]byte(nil), f.Payload...),
	})
}

// MaskFrameInPlace masks the frame payload in place with a randomly
// generated masking key.
func MaskFrameInPlace(f Frame) Frame {
	return MaskFrameInPlaceWith(f, NewMask())
}

// MaskFrameInPlaceWith masks the frame payload in place with the given key.
func MaskFrameInPlaceWith(f Frame, mask [4]byte) Frame {
	f.Header.Masked = true
	f.Header.Mask = mask
	Cipher(f.Payload, mask, 0)
	return f
}

// UnmaskFrame returns a frame with unmasked payload, leaving f untouched.
func UnmaskFrame(f Frame) Frame {
	return UnmaskFrameInPlace(Frame{
		Header:  f.Header,
		Payload: append([]byte(nil), f.Payload...),
	})
}

// UnmaskFrameInPlace unmasks the frame payload in place and drops the
// masking bit and key from its header.
func UnmaskFrameInPlace(f Frame) Frame {
	Cipher(f.Payload, f.Header.Mask, 0)
	f.Header.Masked = false
	f.Header.Mask = [4]byte{}
	return f
}
