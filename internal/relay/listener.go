package relay

import (
	"context"
	"net"

	"github.com/matst80/relayroom/internal/obs"
)

// Serve accepts inbound connections until the listener closes or ctx is done,
// spawning an admission goroutine per connection. It never blocks on an
// individual handshake.
func (s *Server) Serve(ctx context.Context, ln net.Listener) {
	s.lnMu.Lock()
	s.ln = ln
	closing := s.closing.Load()
	s.lnMu.Unlock()
	if closing {
		_ = ln.Close()
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		conn, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				obs.Error("accept.timeout", obs.Fields{"err": err.Error()})
				continue
			}
			// Listener closed during shutdown, or a hard accept failure.
			return
		}
		if s.limiter != nil {
			host, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
			if !s.limiter.AllowConnection(host) {
				obs.Warn("accept.rate_limited", obs.Fields{"remote": conn.RemoteAddr().String()})
				obs.RateLimitedTotal.Inc()
				s.rejectConn(conn)
				continue
			}
		}
		go s.handleConn(conn)
	}
}
