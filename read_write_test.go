// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package moguchat

import (
	"bytes"
	"fmt"
	"testing"
)

// RWTestCases feeds both TestReadHeader and TestWriteHeader: every non-error
// case must survive a header round trip bit for bit.
var RWTestCases = []struct {
	Header Header
	Data   []byte
	Err    bool
}{
	{
		Header: Header{Fin: true, OpCode: OpText, Length: 0},
		Data:   []byte{0x81, 0x00},
	},
	{
		Header: Header{Fin: true, OpCode: OpClose, Length: 0},
		Data:   []byte{0x88, 0x00},
	},
	{
		Header: Header{Fin: false, OpCode: OpContinuation, Length: 5},
		Data:   []byte{0x00, 0x05},
	},
	{
		Header: Header{Fin: true, OpCode: OpBinary, Length: 125},
		Data:   []byte{0x82, 125},
	},
	{
		Header: Header{Fin: true, OpCode: OpText, Length: 126},
		Data:   []byte{0x81, 126, 0x00, 126},
	},
	{
		Header: Header{Fin: true, OpCode: OpText, Length: 65535},
		Data:   []byte{0x81, 126, 0xff, 0xff},
	},
	{
		Header: Header{Fin: true, OpCode: OpBinary, Length: 65536},
		Data:   []byte{0x82, 127, 0, 0, 0, 0, 0, 1, 0, 0},
	},
	{
		Header: Header{
			Fin:    true,
			OpCode: OpText,
			Masked: true,
			Mask:   [4]byte{0x12, 0x34, 0x56, 0x78},
			Length: 7,
		},
		Data: []byte{0x81, 0x87, 0x12, 0x34, 0x56, 0x78},
	},
	{
		Header: Header{
			Fin:    true,
			OpCode: OpBinary,
			Masked: true,
			Mask:   [4]byte{0xde, 0xad, 0xbe, 0xef},
			Length: 300,
		},
		Data: []byte{0x82, 0x80 | 126, 0x01, 0x2c, 0xde, 0xad, 0xbe, 0xef},
	},
	{
		Header: Header{Fin: true, OpCode: OpText, Length: -1},
		Err:    true,
	},
}

var RWBenchCases = []struct {
	label  string
	header Header
}{
	{"small", Header{Fin: true, OpCode: OpText, Length: 100}},
	{"medium", Header{Fin: true, OpCode: OpText, Length: 4096}},
	{"big", Header{Fin: true, OpCode: OpBinary, Length: 1 << 20}},
	{
		"masked",
		Header{
			Fin:    true,
			OpCode: OpText,
			Masked: true,
			Mask:   [4]byte{1, 2, 3, 4},
			Length: 100,
		},
	},
}

func TestReadHeader(t *testing.T) {
	for i, test := range RWTestCases {
		if test.Err {
			continue
		}
		t.Run(fmt.Sprintf("#%d", i), func(t *testing.T) {
			h, err := ReadHeader(bytes.NewReader(test.Data))
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if h != test.Header {
				t.Errorf("ReadHeader() = %+v; want %+v", h, test.Header)
			}
		})
	}
}

func TestReadHeaderLengthMSB(t *testing.T) {
	data := []byte{0x82, 127, 0x80, 0, 0, 0, 0, 0, 0, 0}
	if _, err := ReadHeader(bytes.NewReader(data)); err != ErrHeaderLengthMSB {
		t.Errorf("ReadHeader() error = %v; want %v", err, ErrHeaderLengthMSB)
	}
}

func TestReadFrameAdvertisedLengthExceedsStream(t *testing.T) {
	// The header claims 2^63-1 payload bytes; the stream ends immediately.
	// The read must fail with the stream error, not allocate up front.
	data := []byte{0x81, 127, 0x7f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	if _, err := ReadFrame(bytes.NewReader(data)); err == nil {
		t.Fatalf("ReadFrame() succeeded on a payload the stream never delivered")
	}
}
