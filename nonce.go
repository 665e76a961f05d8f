// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package moguchat

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
)

// acceptGUID is the fixed GUID from RFC 6455 section 1.3 used to derive the
// Sec-WebSocket-Accept value.
const acceptGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

const (
	// nonceKeySize is the raw Sec-WebSocket-Key size before base64 encoding.
	nonceKeySize = 16
	// nonceSize is the base64-encoded nonce size.
	nonceSize = 24
	// acceptSize is the base64-encoded Sec-WebSocket-Accept size.
	acceptSize = 28
)

// mustRandBytes fills p from the crypto/rand source. Masking keys and
// handshake nonces are not a security boundary, but the protocol still wants
// them unpredictable, so a failure of the system randomness source is fatal.
func mustRandBytes(p []byte) {
	if _, err := rand.Read(p); err != nil {
		panic("moguchat: could not read random bytes: " + err.Error())
	}
}

// NewMask returns a fresh masking key. The key is drawn from crypto/rand for
// protocol conformance, not confidentiality; masking is never a security
// control and callers must not treat it as one.
func NewMask() (mask [4]byte) {
	mustRandBytes(mask[:])
	return mask
}

// initNonce fills dst[:nonceSize] with a base64-encoded random nonce.
func initNonce(dst []byte) {
	var key [nonceKeySize]byte
	mustRandBytes(key[:])
	base64.StdEncoding.Encode(dst, key[:])
}

func mustMakeNonce() []byte {
	nonce := make([]byte, nonceSize)
	initNonce(nonce)
	return nonce
}

// initAcceptFromNonce fills dst[:acceptSize] with the accept key derived
// from the nonce: base64(SHA-1(nonce + acceptGUID)).
func initAcceptFromNonce(dst, nonce []byte) {
	sha := sha1.New()
	sha.Write(nonce)
	sha.Write(strToBytes(acceptGUID))
	var sum [sha1.Size]byte
	base64.StdEncoding.Encode(dst, sha.Sum(sum[:0]))
}

func mustMakeAccept(nonce []byte) []byte {
	accept := make([]byte, acceptSize)
	initAcceptFromNonce(accept, nonce)
	return accept
}
