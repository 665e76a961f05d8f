// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package moguchat

import (
	"bytes"
	"testing"
)

func payloadOfSize(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i * 7)
	}
	return p
}

// Boundary sizes of the variable-length size encoding.
var roundTripSizes = []int{0, 1, 125, 126, 65535, 65536}

func TestFrameRoundTrip(t *testing.T) {
	for _, op := range []OpCode{OpText, OpBinary} {
		for _, size := range roundTripSizes {
			for _, masked := range []bool{false, true} {
				payload := payloadOfSize(size)
				f := NewFrame(op, true, append([]byte(nil), payload...))
				if masked {
					f = MaskFrameInPlace(f)
				}
				bts := MustCompileFrame(f)

				got, n, err := ParseFrame(bts)
				if err != nil {
					t.Fatalf("op=%v size=%d masked=%v: ParseFrame error: %v", op, size, masked, err)
				}
				if n != len(bts) {
					t.Fatalf("op=%v size=%d masked=%v: consumed %d of %d bytes", op, size, masked, n, len(bts))
				}
				if !got.Header.Fin {
					t.Errorf("op=%v size=%d: fin bit lost", op, size)
				}
				if got.Header.OpCode != op {
					t.Errorf("opcode = %v; want %v", got.Header.OpCode, op)
				}
				if got.Header.Masked != masked {
					t.Errorf("masked = %v; want %v", got.Header.Masked, masked)
				}
				if !bytes.Equal(got.Payload, payload) {
					t.Errorf("op=%v size=%d masked=%v: payload differs after round trip", op, size, masked)
				}
			}
		}
	}
}

func TestControlFrameRoundTrip(t *testing.T) {
	for _, op := range []OpCode{OpClose, OpPing, OpPong} {
		for _, size := range []int{0, 1, 125} {
			payload := payloadOfSize(size)
			f := NewFrame(op, true, append([]byte(nil), payload...))
			bts := MustCompileFrame(f)
			got, n, err := ParseFrame(bts)
			if err != nil {
				t.Fatalf("op=%v size=%d: ParseFrame error: %v", op, size, err)
			}
			if n != len(bts) {
				t.Fatalf("op=%v size=%d: consumed %d of %d", op, size, n, len(bts))
			}
			if got.Header.OpCode != op || !bytes.Equal(got.Payload, payload) {
				t.Errorf("op=%v size=%d: round trip mismatch", op, size)
			}
		}
	}
}

func TestCipherIsInvolution(t *testing.T) {
	payload := payloadOfSize(333)
	orig := append([]byte(nil), payload...)
	mask := NewMask()
	Cipher(payload, mask, 0)
	if bytes.Equal(payload, orig) && len(payload) > 0 {
		// Astronomically unlikely with a random key unless the key is zero.
		if mask != [4]byte{} {
			t.Errorf("masking left payload unchanged")
		}
	}
	Cipher(payload, mask, 0)
	if !bytes.Equal(payload, orig) {
		t.Errorf("mask+unmask is not the identity transform")
	}
}

func TestCipherChunkedOffsets(t *testing.T) {
	payload := payloadOfSize(100)
	mask := [4]byte{0xa1, 0xb2, 0xc3, 0xd4}

	whole := append([]byte(nil), payload...)
	Cipher(whole, mask, 0)

	chunked := append([]byte(nil), payload...)
	for i := 0; i < len(chunked); i += 7 {
		end := i + 7
		if end > len(chunked) {
			end = len(chunked)
		}
		Cipher(chunked[i:end], mask, i)
	}
	if !bytes.Equal(whole, chunked) {
		t.Errorf("chunked cipher differs from whole-buffer cipher")
	}
}

func TestMaskFrameLeavesOriginal(t *testing.T) {
	payload := []byte("hello")
	f := NewTextFrame(payload)
	m := MaskFrame(f)
	if !m.Header.Masked {
		t.Fatalf("MaskFrame did not set the mask bit")
	}
	if m.Header.Mask == [4]byte{} {
		t.Errorf("MaskFrame produced a zero key")
	}
	if !bytes.Equal(f.Payload, []byte("hello")) {
		t.Errorf("MaskFrame mutated the source frame payload")
	}
	u := UnmaskFrame(m)
	if u.Header.Masked {
		t.Errorf("UnmaskFrame kept the mask bit")
	}
	if !bytes.Equal(u.Payload, payload) {
		t.Errorf("UnmaskFrame(MaskFrame(f)) payload = %q; want %q", u.Payload, payload)
	}
}

func TestServerFramesUnmasked(t *testing.T) {
	// Frames built by the constructors are server-role frames: no mask
	// unless the caller explicitly applies one for the client role.
	for _, f := range []Frame{
		NewTextFrame([]byte("x")),
		NewBinaryFrame(nil),
		NewCloseFrame(nil),
		NewPingFrame(nil),
		NewPongFrame(nil),
	} {
		if f.Header.Masked {
			t.Errorf("constructor produced a masked %v frame", f.Header.OpCode)
		}
		bts := MustCompileFrame(f)
		if bts[1]&0x80 != 0 {
			t.Errorf("%v frame has mask bit on the wire", f.Header.OpCode)
		}
	}
}

func TestStatePrepareFrame(t *testing.T) {
	// The role decides the masking: client-side frames go out masked with a
	// fresh key, server-side frames go out bare.
	f := StateClientSide.PrepareFrame(NewTextFrame([]byte("hello")))
	if !f.Header.Masked {
		t.Fatalf("client-role frame is not masked")
	}
	u := UnmaskFrame(f)
	if !bytes.Equal(u.Payload, []byte("hello")) {
		t.Errorf("masked payload does not unmask to the original")
	}

	f = StateServerSide.PrepareFrame(NewTextFrame([]byte("hello")))
	if f.Header.Masked {
		t.Errorf("server-role frame is masked")
	}
	if !bytes.Equal(f.Payload, []byte("hello")) {
		t.Errorf("server-role payload was transformed")
	}

	if !StateClientSide.ClientSide() || StateClientSide.ServerSide() {
		t.Errorf("StateClientSide role predicates are wrong")
	}
	if !StateServerSide.ServerSide() || StateServerSide.ClientSide() {
		t.Errorf("StateServerSide role predicates are wrong")
	}
}

func TestCloseFrameBody(t *testing.T) {
	body := NewCloseFrameBody(StatusGoingAway, "goodbye!")
	code, reason := ParseCloseFrameData(body)
	if code != StatusGoingAway || reason != "goodbye!" {
		t.Errorf("ParseCloseFrameData = (%v, %q); want (%v, %q)", code, reason, StatusGoingAway, "goodbye!")
	}

	code, reason = ParseCloseFrameData(nil)
	if code != StatusNoStatusRcvd || reason != "" {
		t.Errorf("empty close body = (%v, %q); want (%v, %q)", code, reason, StatusNoStatusRcvd, "")
	}
}

func TestOpCodePredicates(t *testing.T) {
	for _, op := range []OpCode{OpClose, OpPing, OpPong} {
		if !op.IsControl() || op.IsData() {
			t.Errorf("%v must be a control op", op)
		}
	}
	for _, op := range []OpCode{OpContinuation, OpText, OpBinary} {
		if op.IsControl() || !op.IsData() {
			t.Errorf("%v must be a data op", op)
		}
	}
	if OpCode(0x3).IsReserved() != true || OpText.IsReserved() {
		t.Errorf("IsReserved misclassifies op codes")
	}
}
