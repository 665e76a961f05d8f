// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package chat

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	ms "github.com/cmacro/moguchat"
	"github.com/gobwas/pool/pbytes"
)

var ErrNotConnected = errors.New("chat: client is not connected")

// Client is the client-side session: it dials the server, performs the
// handshake, submits its display name as the identity frame and then relays
// text both ways. Every frame it sends is masked (client role).
type Client struct {
	addr string
	name string
	log  ms.Logger
	role ms.State

	// OnMessage is invoked from the receive goroutine for every chat text
	// frame. Set it before Run.
	OnMessage func(text string)

	// PollInterval overrides DefaultPollInterval when positive.
	PollInterval time.Duration

	mu     sync.Mutex
	conn   net.Conn
	state  State
	cancel context.CancelFunc

	closeOnce sync.Once
}

func NewClient(addr, name string, log ms.Logger) *Client {
	return &Client{
		addr:  addr,
		name:  name,
		log:   log,
		role:  ms.StateClientSide,
		state: StateConnecting,
	}
}

func (c *Client) pollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return DefaultPollInterval
}

// Run connects, upgrades and serves the session until ctx is cancelled, the
// peer closes, or the transport fails. It blocks for the session lifetime.
func (c *Client) Run(ctx context.Context) error {
	u, err := ms.ParserAddr(c.addr)
	if err != nil {
		return err
	}
	conn, err := net.Dial(u.Data())
	if err != nil {
		return err
	}
	c.log.Debug("client dial", c.addr)

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	c.conn = conn
	c.cancel = cancel
	c.state = StateHandshakePending
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state = StateClosed
		c.conn = nil
		c.mu.Unlock()
		if err := conn.Close(); err != nil {
			c.log.Debug("close connection", err)
		}
		c.log.Debug("client closed.")
	}()

	var d ms.Dialer
	_, residue, err := d.Upgrade(conn, u.Address, "/")
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.state = StateOpen
	c.mu.Unlock()

	// First text frame after the upgrade carries the display name.
	if err := c.Send(c.name); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		c.receive(sctx, conn, residue)
	}()

	<-sctx.Done()
	conn.Close()
	<-done
	return nil
}

// receive is the dedicated read loop, separate from the interactive send
// path. Same accumulation discipline as the server session.
func (c *Client) receive(ctx context.Context, conn net.Conn, rbuf []byte) {
	scratch := pbytes.GetLen(readChunkSize)
	defer pbytes.Put(scratch)

	poll := c.pollInterval()
	for {
		if done := c.drainClient(&rbuf); done {
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(poll)); err != nil {
			return
		}
		n, err := conn.Read(scratch)
		if n > 0 {
			rbuf = append(rbuf, scratch[:n]...)
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() == nil {
				c.log.Info("connection lost", err)
			}
			return
		}
	}
}

func (c *Client) drainClient(rbuf *[]byte) (done bool) {
	for {
		f, n, err := ms.ParseFrame(*rbuf)
		if err != nil {
			c.log.Warn("bad frame", err)
			return true
		}
		if n == 0 {
			return false
		}
		*rbuf = (*rbuf)[n:]
		switch f.Header.OpCode {
		case ms.OpText:
			if cb := c.OnMessage; cb != nil {
				cb(string(f.Payload))
			}
		case ms.OpPing:
			if err := c.writeFrame(ms.NewPongFrame(f.Payload)); err != nil {
				return true
			}
		case ms.OpClose:
			c.mu.Lock()
			if c.state == StateOpen {
				c.state = StateClosingRemote
			}
			c.mu.Unlock()
			if err := c.writeFrame(ms.NewCloseFrame(nil)); err != nil {
				c.log.Debug("close reply", err)
			}
			return true
		default:
			c.log.Debug("ignored frame", f.Header.OpCode)
		}
	}
}

// Send masks text into a client-role frame and writes it.
func (c *Client) Send(text string) error {
	return c.writeFrame(ms.NewTextFrame([]byte(text)))
}

// writeFrame applies the client role's masking and writes one frame.
func (c *Client) writeFrame(f ms.Frame) error {
	bts, err := ms.CompileFrame(c.role.PrepareFrame(f))
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	_, err = c.conn.Write(bts)
	return err
}

// Close initiates the graceful local close: a masked close frame, then
// teardown of the session. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		if c.state == StateOpen {
			c.state = StateClosingLocal
		}
		cancel := c.cancel
		c.mu.Unlock()
		if err := c.writeFrame(ms.NewCloseFrame(nil)); err != nil {
			c.log.Debug("close frame", err)
		}
		if cancel != nil {
			cancel()
		}
	})
}
