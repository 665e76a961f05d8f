// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package moguchat

import (
	"errors"
	"io"
	"net/http"

	"github.com/gobwas/httphead"
	"github.com/gobwas/pool/pbufio"
)

// Errors returned during the server-side handshake. A failed handshake
// abandons the transport: no response is written, the connection is simply
// closed by the caller.
var (
	ErrHandshakeBadMethod     = errors.New("handshake error: bad HTTP request method")
	ErrHandshakeBadUpgrade    = errors.New("handshake error: bad Upgrade header")
	ErrHandshakeBadConnection = errors.New("handshake error: bad Connection header")
	ErrHandshakeBadSecKey     = errors.New("handshake error: missing Sec-WebSocket-Key header")
	ErrHandshakeBadStatus     = errors.New("handshake error: unexpected HTTP response status")
)

// Handshake describes the result of a completed upgrade.
type Handshake struct {
	// Host is the value of the Host header of the upgrade request.
	Host string
	// Protocol is the requested Sec-WebSocket-Protocol value, if any. No
	// subprotocol is ever negotiated; it is recorded for the application.
	Protocol string
}

// Upgrader upgrades a raw connection to the framed protocol by performing
// the server side of the RFC 6455 opening handshake.
type Upgrader struct {
	// ReadBufferSize is the size of the pooled read buffer used while
	// parsing the upgrade request. Zero means a sane default.
	ReadBufferSize int
}

const defaultReadBufferSize = 4096

// Upgrade reads an HTTP upgrade request from conn, validates it and writes
// the 101 Switching Protocols response.
//
// On validation failure nothing is written and the error describes the
// offending part of the request; the transport must then be closed without
// further use. On success the returned residue holds any frame bytes the
// peer pipelined behind the request; the caller must treat them as already
// read connection data.
func (u Upgrader) Upgrade(conn io.ReadWriter) (hs Handshake, residue []byte, err error) {
	size := u.ReadBufferSize
	if size == 0 {
		size = defaultReadBufferSize
	}
	br := pbufio.GetReader(conn, size)
	defer pbufio.PutReader(br)

	req, err := http.ReadRequest(br)
	if err != nil {
		return hs, nil, err
	}
	io.Copy(io.Discard, req.Body)
	req.Body.Close()

	if req.Method != http.MethodGet {
		return hs, nil, ErrHandshakeBadMethod
	}
	if !strHasToken(req.Header.Get("Upgrade"), "websocket") {
		return hs, nil, ErrHandshakeBadUpgrade
	}
	if !strHasToken(req.Header.Get("Connection"), "upgrade") {
		return hs, nil, ErrHandshakeBadConnection
	}
	nonce := req.Header.Get("Sec-WebSocket-Key")
	if nonce == "" {
		return hs, nil, ErrHandshakeBadSecKey
	}
	hs.Host = req.Host
	hs.Protocol = req.Header.Get("Sec-WebSocket-Protocol")

	if n := br.Buffered(); n > 0 {
		bts, _ := br.Peek(n)
		residue = append([]byte(nil), bts...)
		br.Discard(n)
	}

	accept := mustMakeAccept(strToBytes(nonce))

	bw := pbufio.GetWriter(conn, 512)
	defer pbufio.PutWriter(bw)
	bw.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
	bw.WriteString("Upgrade: websocket\r\n")
	bw.WriteString("Connection: Upgrade\r\n")
	bw.WriteString("Sec-WebSocket-Accept: ")
	bw.Write(accept)
	bw.WriteString("\r\n\r\n")
	return hs, residue, bw.Flush()
}

// strHasToken reports whether the comma-separated token list v contains
// token, compared case-insensitively.
func strHasToken(v, token string) (has bool) {
	httphead.ScanTokens(strToBytes(v), func(t []byte) bool {
		has = btsEqualFold(t, token)
		return !has
	})
	return has
}

func btsEqualFold(b []byte, s string) bool {
	if len(b) != len(s) {
		return false
	}
	for i := 0; i < len(b); i++ {
		if b[i]|0x20 != s[i]|0x20 {
			return false
		}
	}
	return true
}
