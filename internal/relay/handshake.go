package relay

import (
	"net"
	"time"

	"github.com/matst80/relayroom/internal/obs"
	"github.com/matst80/relayroom/internal/proto"
)

// handshakeBufSize bounds the first read; a NAME: line never comes close.
const handshakeBufSize = 2048

// handleConn runs the per-connection admission flow: name handshake, pending
// gate, then either rejection or promotion into a relay session. The session
// runs in the same goroutine, so the conn has exactly one owner at all times.
func (s *Server) handleConn(conn net.Conn) {
	remote := conn.RemoteAddr().String()

	buf := make([]byte, handshakeBufSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.handshakeTimeout))
	n, err := conn.Read(buf)
	if err != nil {
		obs.Debug("handshake.read", obs.Fields{"err": err.Error(), "remote": remote})
		obs.ErrorsTotal.WithLabelValues("handshake_read").Inc()
		s.rejectConn(conn)
		return
	}
	name, ok := proto.ParseHandshake(buf[:n])
	if !ok {
		obs.Debug("handshake.malformed", obs.Fields{"remote": remote})
		obs.ErrorsTotal.WithLabelValues("handshake_malformed").Inc()
		s.rejectConn(conn)
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	p := s.pending.create(conn, name, remote)
	obs.Info("admission.pending", obs.Fields{"pid": p.id, "name": name, "remote": remote})

	// The only unbounded wait in the system: a human has to act, or shutdown
	// drains the table and delivers a rejection.
	accepted := <-p.decision
	if !accepted {
		obs.Info("admission.rejected", obs.Fields{"pid": p.id, "name": name, "remote": remote})
		obs.AdmissionsTotal.WithLabelValues("rejected").Inc()
		s.rejectConn(conn)
		return
	}

	c := s.registry.register(conn, name, remote)
	if _, err := conn.Write([]byte(proto.ModeToken(string(s.mode)))); err != nil {
		// Peer vanished between the decision and the acceptance token.
		obs.ErrorsTotal.WithLabelValues("mode_send").Inc()
		s.disconnect(conn)
		return
	}
	obs.AdmissionsTotal.WithLabelValues("accepted").Inc()
	obs.Info("admission.accepted", obs.Fields{"pid": p.id, "id": c.id, "name": name, "remote": remote})
	s.presence.Join(c.id, c.name, c.addr)

	s.runSession(c)
}
