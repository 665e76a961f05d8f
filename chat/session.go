// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package chat

import (
	"context"
	"net"
	"sync"
	"time"

	ms "github.com/cmacro/moguchat"
	"github.com/gobwas/pool/pbytes"
)

// DefaultPollInterval bounds how long a session read blocks before checking
// for cancellation.
const DefaultPollInterval = time.Second

const readChunkSize = 4096

// Connecter upgrades accepted connections and runs one server-side chat
// session per connection. It implements ms.ConnectHandler.
type Connecter struct {
	hub      *Hub
	upgrader ms.Upgrader
	log      ms.Logger

	// PollInterval overrides DefaultPollInterval when positive.
	PollInterval time.Duration
}

func NewConnecter(hub *Hub, log ms.Logger) *Connecter {
	return &Connecter{
		hub: hub,
		log: log,
	}
}

func (c *Connecter) pollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return DefaultPollInterval
}

// Session is the per-connection state machine on the server side. All of its
// state except the write path belongs to the session goroutine; the hub
// reaches in only through writeRaw and kill.
type Session struct {
	hub  *Hub
	log  ms.Logger
	conn net.Conn
	role ms.State

	state State
	name  string
	rbuf  []byte

	wmu    sync.Mutex
	cancel context.CancelFunc
}

// transition asserts the lifecycle graph; see State.
func (s *Session) transition(to State) {
	if !legalTransition(s.state, to) {
		panic("chat: illegal session transition " + s.state.String() + " -> " + to.String())
	}
	s.state = to
}

// writeRaw writes already encoded frame bytes to the transport. It is the
// only session method safe to call from outside the session goroutine.
func (s *Session) writeRaw(p []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	_, err := s.conn.Write(p)
	return err
}

func (s *Session) write(f ms.Frame) error {
	bts, err := ms.CompileFrame(s.role.PrepareFrame(f))
	if err != nil {
		return err
	}
	return s.writeRaw(bts)
}

// kill kicks the session onto its local close path. Safe for concurrent use.
func (s *Session) kill() {
	s.cancel()
}

// Run drives one accepted connection from handshake to close.
func (c *Connecter) Run(ctx context.Context, conn net.Conn) {
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := &Session{
		hub:    c.hub,
		log:    c.log,
		conn:   conn,
		role:   ms.StateServerSide,
		state:  StateConnecting,
		cancel: cancel,
	}
	s.transition(StateHandshakePending)

	hs, residue, err := c.upgrader.Upgrade(conn)
	if err != nil {
		// Abandon the transport: nothing was upgraded, nothing is sent.
		c.log.Info("handshake refused", err)
		s.transition(StateClosed)
		return
	}
	c.log.Debug("handshake done", hs.Host)
	s.transition(StateAwaitingIdentity)

	// The peer may have pipelined frames behind its handshake request.
	s.rbuf = residue
	if done := s.drain(); done {
		return
	}

	scratch := pbytes.GetLen(readChunkSize)
	defer pbytes.Put(scratch)

	poll := c.pollInterval()
	for {
		select {
		case <-sctx.Done():
			s.closeLocal()
			return
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(poll)); err != nil {
			s.closeLocal()
			return
		}
		n, err := conn.Read(scratch)
		if n > 0 {
			s.rbuf = append(s.rbuf, scratch[:n]...)
			if done := s.drain(); done {
				return
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			s.closeLocal()
			return
		}
	}
}

// drain extracts and dispatches every complete frame buffered so far,
// keeping unconsumed trailing bytes for the next read. It reports whether
// the session reached its terminal state.
func (s *Session) drain() (done bool) {
	for {
		f, n, err := ms.ParseFrame(s.rbuf)
		if err != nil {
			s.log.Warn("bad frame", err)
			s.closeLocal()
			return true
		}
		if n == 0 {
			return false
		}
		s.rbuf = s.rbuf[n:]
		if done := s.dispatch(f); done {
			return true
		}
	}
}

func (s *Session) dispatch(f ms.Frame) (done bool) {
	switch f.Header.OpCode {
	case ms.OpPing:
		if err := s.write(ms.NewPongFrame(f.Payload)); err != nil {
			s.closeLocal()
			return true
		}
	case ms.OpClose:
		s.closeRemote(f)
		return true
	case ms.OpText:
		if s.state == StateAwaitingIdentity {
			s.name = string(f.Payload)
			s.transition(StateOpen)
			s.hub.Admit(s, s.name)
			s.log.Debug("identified", s.name)
		} else {
			s.hub.Broadcast(string(f.Payload), s)
		}
	default:
		// Continuation, binary and pong frames decode fine but carry no
		// chat-level meaning yet.
		s.log.Debug("ignored frame", f.Header.OpCode)
	}
	return false
}

// closeRemote handles a close frame from the peer: reply, leave the hub,
// drop the transport.
func (s *Session) closeRemote(f ms.Frame) {
	s.transition(StateClosingRemote)
	if code, reason := ms.ParseCloseFrameData(f.Payload); !code.Empty() {
		s.log.Debug("peer close", code, reason)
	}
	if err := s.write(ms.NewCloseFrame(nil)); err != nil {
		s.log.Debug("close reply", err)
	}
	s.hub.Remove(s)
	s.conn.Close()
	s.transition(StateClosed)
}

// closeLocal is the close path for local shutdown and for any I/O error:
// best-effort close frame, hub removal, hard transport close.
func (s *Session) closeLocal() {
	if s.state == StateClosed {
		return
	}
	s.transition(StateClosingLocal)
	if err := s.write(ms.NewCloseFrame(nil)); err != nil {
		s.log.Debug("close frame", err)
	}
	s.hub.Remove(s)
	s.conn.Close()
	s.transition(StateClosed)
}
