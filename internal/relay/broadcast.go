package relay

import (
	"net"

	"github.com/matst80/relayroom/internal/obs"
)

// broadcastText fans a text payload out to every admitted client except
// exclude. The registry lock is released before any send; a failed send means
// the peer is gone and prunes it from the registry. Errors never reach the
// caller.
func (s *Server) broadcastText(msg string, exclude net.Conn) {
	s.fanOut([]byte(msg), exclude)
}

// broadcastAudio fans raw bytes out with the same semantics, no encoding step.
func (s *Server) broadcastAudio(data []byte, exclude net.Conn) {
	s.fanOut(data, exclude)
}

func (s *Server) fanOut(payload []byte, exclude net.Conn) {
	for _, conn := range s.registry.snapshot(exclude) {
		if _, err := conn.Write(payload); err != nil {
			// The target may already have been removed by a concurrent
			// disconnect; disconnect is idempotent so this stays benign.
			obs.Debug("broadcast.send", obs.Fields{"err": err.Error()})
			obs.ErrorsTotal.WithLabelValues("broadcast_send").Inc()
			s.disconnect(conn)
		}
	}
}
