// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package moguchat

import (
	"context"
	"net"
	"net/url"
	"os"
	"strings"
)

// DefaultAddr is the address the chat server listens on when none is given.
const DefaultAddr = "tcp://127.0.0.1:8000"

func NewServer(addr string, connhandler ConnectHandler, log Logger) *Server {
	return &Server{
		addr:        addr,
		Logger:      log,
		connHandler: connhandler,
	}
}

// Server accepts raw connections on a listening socket and hands each one to
// its ConnectHandler in a dedicated goroutine. Per-connection failures never
// reach the accept loop; only a failure to bind aborts Run.
type Server struct {
	Logger
	addr        string
	connHandler ConnectHandler
}

type Addr struct {
	Network string
	Address string
}

func (u *Addr) Data() (n string, a string) {
	return u.Network, u.Address
}

// ParserAddr parses a scheme://address listen string, e.g. tcp://127.0.0.1:8000
// or unix:///tmp/chat.sock.
func ParserAddr(a string) (*Addr, error) {
	u, err := url.Parse(a)
	if err != nil {
		return nil, err
	}
	addr := u.Host
	if addr == "" {
		addr = u.Path
	}
	return &Addr{Network: u.Scheme, Address: addr}, nil
}

func clearEnvConnect(scheme, path string) error {
	if scheme == "unix" {
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Run listens on the configured address and serves until ctx is cancelled.
// Cancelling ctx stops every connection handler (each runs its own close
// path) and then closes the listening socket.
func (s *Server) Run(ctx context.Context) {
	u, err := ParserAddr(s.addr)
	if err != nil {
		s.Error("failed addr parser ", s.addr, err)
		return
	}
	if err := clearEnvConnect(u.Network, u.Address); err != nil {
		s.Error("Error removing socket file", err)
		return
	}

	listener, err := net.Listen(u.Network, u.Address)
	if err != nil {
		s.Error("failed net listen ", s.addr, err)
		return
	}
	s.Info("listening :", s.addr)
	defer func() {
		err := listener.Close()
		if err != nil {
			s.Error("listener closed", err)
		}
		_ = clearEnvConnect(u.Network, u.Address)
	}()
	go s.handleAccept(ctx, listener)

	<-ctx.Done()
	s.Info("Server closed", s.addr)
}

func (s *Server) handleAccept(ctx context.Context, ln net.Listener) {
	defer s.Info("listener closed.")
	for {
		select {
		case <-ctx.Done():
			s.Info("stop handle accept.")
			return
		default:
			conn, err := ln.Accept()
			if err != nil {
				// Expected while the listener is being shut down.
				if strings.Contains(err.Error(), "use of closed network connection") {
					s.Info("Accept closed.")
					return
				}
				s.Warn("handle accept failure", err)
				continue
			}
			s.Info("conn open", conn.RemoteAddr().String())
			go func() {
				defer func() {
					if err := conn.Close(); err != nil {
						s.Debug("conn close", err)
					} else {
						s.Info("conn close", conn.RemoteAddr().String())
					}
				}()
				s.connHandler.Run(ctx, conn)
			}()
		}
	}
}
