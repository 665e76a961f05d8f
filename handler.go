// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package moguchat

import (
	"context"
	"net"
)

// ConnectHandler drives one accepted connection. Run owns all reads on conn
// for its whole lifetime; the connection is handed over right after accept,
// before any handshake. Implementations use read deadlines to poll conn so
// that ctx cancellation is observed promptly.
type ConnectHandler interface {
	Run(ctx context.Context, conn net.Conn)
}
