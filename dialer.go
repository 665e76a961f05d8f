// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package moguchat

import (
	"io"
	"strings"

	"github.com/gobwas/pool/pbufio"
)

// Dialer performs the client side of the RFC 6455 opening handshake over an
// already established transport.
type Dialer struct {
	// Protocol, when non-empty, is sent as Sec-WebSocket-Protocol. The
	// server's choice is not validated; no subprotocol is negotiated.
	Protocol string
}

// Upgrade sends an upgrade request for uri with a fresh random nonce and
// validates the response status line: anything without the 101 status token
// fails the handshake.
//
// The returned residue holds frame bytes the server sent right behind its
// response head; the caller must treat them as already read connection data.
func (d Dialer) Upgrade(conn io.ReadWriter, host, uri string) (hs Handshake, residue []byte, err error) {
	nonce := mustMakeNonce()

	bw := pbufio.GetWriter(conn, 512)
	bw.WriteString("GET ")
	bw.WriteString(uri)
	bw.WriteString(" HTTP/1.1\r\nHost: ")
	bw.WriteString(host)
	bw.WriteString("\r\nUpgrade: websocket\r\nConnection: Upgrade\r\nSec-WebSocket-Key: ")
	bw.Write(nonce)
	bw.WriteString("\r\nSec-WebSocket-Version: 13\r\n")
	if d.Protocol != "" {
		bw.WriteString("Sec-WebSocket-Protocol: ")
		bw.WriteString(d.Protocol)
		bw.WriteString("\r\n")
	}
	bw.WriteString("\r\n")
	err = bw.Flush()
	pbufio.PutWriter(bw)
	if err != nil {
		return hs, nil, err
	}

	br := pbufio.GetReader(conn, defaultReadBufferSize)
	defer pbufio.PutReader(br)

	status, err := br.ReadString('\n')
	if err != nil {
		return hs, nil, err
	}
	if f := strings.Fields(status); len(f) < 2 || f[1] != "101" {
		return hs, nil, ErrHandshakeBadStatus
	}
	// Drain response headers through the terminating empty line.
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return hs, nil, err
		}
		if line == "\r\n" || line == "\n" {
			break
		}
	}

	if n := br.Buffered(); n > 0 {
		bts, _ := br.Peek(n)
		residue = append([]byte(nil), bts...)
		br.Discard(n)
	}
	hs.Host = host
	return hs, residue, nil
}
