package relay

import (
	"fmt"
	"strings"
	"time"

	"github.com/matst80/relayroom/internal/obs"
	"github.com/matst80/relayroom/internal/proto"
)

// runSession relays payloads between one admitted client and the rest until
// the peer leaves, errors out or the server shuts down. Every exit path goes
// through disconnect.
func (s *Server) runSession(c *client) {
	start := time.Now()
	defer func() {
		obs.SessionDurationSeconds.Observe(time.Since(start).Seconds())
		s.disconnect(c.conn)
	}()
	switch s.mode {
	case ModeVoice:
		s.runVoiceSession(c)
	default:
		s.runMessagingSession(c)
	}
}

func (s *Server) runMessagingSession(c *client) {
	s.broadcastText(fmt.Sprintf("[Server] User joined -> ID:%d, Name:%s", c.id, c.name), c.conn)
	if _, err := c.conn.Write([]byte(fmt.Sprintf("Welcome %s! Your ID is %d", c.name, c.id))); err != nil {
		return
	}

	buf := make([]byte, s.textBufSize)
	for !s.closing.Load() {
		n, err := c.conn.Read(buf)
		if err != nil || n == 0 {
			// Closed reads, resets and other transport errors are all just a
			// leave; nothing beyond the standard notice reaches the others.
			return
		}
		msg := strings.TrimSpace(string(buf[:n]))
		if msg == "" {
			continue
		}
		if strings.EqualFold(msg, proto.LeaveCommand) {
			return
		}
		if s.limiter != nil && !s.limiter.AllowMessage(c.name) {
			obs.RateLimitedTotal.Inc()
			continue
		}
		obs.MessagesRelayedTotal.Inc()
		s.broadcastText(c.name+": "+msg, c.conn)
	}
}

func (s *Server) runVoiceSession(c *client) {
	// Roster first so the joiner can show who is already on the call. Best
	// effort: a failed send here is not fatal, the read loop will notice.
	if _, err := c.conn.Write([]byte(proto.FormatUsers(s.registry.participants(c.conn)))); err != nil {
		obs.Debug("session.roster_send", obs.Fields{"id": c.id, "err": err.Error()})
	}
	s.broadcastText(fmt.Sprintf("[Server]: %s (ID:%d) joined the call.", c.name, c.id), c.conn)

	buf := make([]byte, s.audioChunkSize)
	for !s.closing.Load() {
		n, err := c.conn.Read(buf)
		if err != nil || n == 0 {
			return
		}
		chunk := buf[:n]
		// Short payloads are probed for the textual leave command; everything
		// else passes through as opaque audio. An unframed stream gives us
		// nothing better to distinguish control from media.
		if n < proto.LeaveSniffMax && proto.IsLeave(chunk) {
			return
		}
		obs.AudioBytesRelayedTotal.Add(float64(n))
		s.broadcastAudio(chunk, c.conn)
	}
}
