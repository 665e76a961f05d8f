// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package chat

import "fmt"

// State is the lifecycle state of a connection session. Transitions are
// guarded; an illegal transition is a programming error and panics.
type State uint8

const (
	StateConnecting State = iota
	StateHandshakePending
	StateAwaitingIdentity
	StateOpen
	StateClosingLocal
	StateClosingRemote
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateHandshakePending:
		return "handshake-pending"
	case StateAwaitingIdentity:
		return "awaiting-identity"
	case StateOpen:
		return "open"
	case StateClosingLocal:
		return "closing-local"
	case StateClosingRemote:
		return "closing-remote"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// legalTransition encodes the session lifecycle graph. Any non-closed state
// may move to ClosingLocal, since I/O errors take the local close path.
func legalTransition(from, to State) bool {
	if from == StateClosed {
		return false
	}
	switch to {
	case StateClosed, StateClosingLocal:
		return true
	case StateHandshakePending:
		return from == StateConnecting
	case StateAwaitingIdentity, StateOpen:
		return from == StateHandshakePending || from == StateAwaitingIdentity
	case StateClosingRemote:
		return from == StateAwaitingIdentity || from == StateOpen
	}
	return false
}
