package relay

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matst80/relayroom/internal/obs"
	"github.com/matst80/relayroom/internal/presence"
	"github.com/matst80/relayroom/internal/proto"
	"github.com/matst80/relayroom/internal/ratelimit"
)

// Mode is the process-wide payload semantics, fixed at startup for every
// session.
type Mode string

const (
	ModeMessaging Mode = "MESSAGING"
	ModeVoice     Mode = "VOICE"
)

// ParseMode maps a config value onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "messaging", "text", "chat":
		return ModeMessaging, nil
	case "voice", "audio":
		return ModeVoice, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want messaging or voice)", s)
	}
}

// Options configure a Server. Zero values fall back to the defaults the wire
// protocol was built around.
type Options struct {
	Mode             Mode
	HandshakeTimeout time.Duration
	TextBufSize      int
	AudioChunkSize   int
	Limiter          *ratelimit.Limiter // optional admission/message gate
	Presence         presence.Publisher // optional roster mirror
}

const (
	defaultHandshakeTimeout = 500 * time.Second
	defaultTextBufSize      = 4096
	defaultAudioChunkSize   = 2048
)

// Server owns the admission gate, the client registry and the broadcast fan
// out. All state is carried here; nothing lives in package-level variables.
type Server struct {
	mode             Mode
	handshakeTimeout time.Duration
	textBufSize      int
	audioChunkSize   int

	registry *registry
	pending  *pendingTable
	limiter  *ratelimit.Limiter
	presence presence.Publisher

	closing atomic.Bool
	lnMu    sync.Mutex
	ln      net.Listener
}

func NewServer(opts Options) *Server {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = defaultHandshakeTimeout
	}
	if opts.TextBufSize <= 0 {
		opts.TextBufSize = defaultTextBufSize
	}
	if opts.AudioChunkSize <= 0 {
		opts.AudioChunkSize = defaultAudioChunkSize
	}
	if opts.Presence == nil {
		opts.Presence = presence.NewNop()
	}
	return &Server{
		mode:             opts.Mode,
		handshakeTimeout: opts.HandshakeTimeout,
		textBufSize:      opts.TextBufSize,
		audioChunkSize:   opts.AudioChunkSize,
		registry:         newRegistry(),
		pending:          newPendingTable(),
		limiter:          opts.Limiter,
		presence:         opts.Presence,
	}
}

// Mode returns the process-wide server mode.
func (s *Server) Mode() Mode { return s.mode }

// Closing reports whether shutdown has started.
func (s *Server) Closing() bool { return s.closing.Load() }

// PendingRequests snapshots the admission queue for the operator.
func (s *Server) PendingRequests() []PendingInfo { return s.pending.list() }

// Accept admits the pending request with the given id. False means the id is
// stale or unknown, which the operator treats as a no-op.
func (s *Server) Accept(pid int) bool { return s.pending.resolve(pid, true) }

// Reject denies the pending request with the given id.
func (s *Server) Reject(pid int) bool { return s.pending.resolve(pid, false) }

// Clients snapshots the admitted client set for the operator.
func (s *Server) Clients() []ClientInfo { return s.registry.list() }

// Kick notifies and disconnects an admitted client by id.
func (s *Server) Kick(id int) bool {
	conn := s.registry.findByID(id)
	if conn == nil {
		return false
	}
	_, _ = conn.Write([]byte("[Server]: You were kicked by admin."))
	obs.KicksTotal.Inc()
	s.disconnect(conn)
	return true
}

// Broadcast sends an operator message to every admitted client.
func (s *Server) Broadcast(text string) {
	s.broadcastText("[Server]: "+text, nil)
}

// disconnect removes a client, closes its handle and tells the others it left.
// Idempotent: concurrent callers race on the registry removal and only the
// winner notifies.
func (s *Server) disconnect(conn net.Conn) {
	c, ok := s.registry.remove(conn)
	if !ok {
		return
	}
	_ = conn.Close()
	s.presence.Leave(c.id)
	obs.Info("client.removed", obs.Fields{"id": c.id, "name": c.name, "remote": c.addr})
	s.broadcastText(fmt.Sprintf("[Server]: %s (ID:%d) has left the session.", c.name, c.id), nil)
}

// Shutdown performs the ordered teardown: stop admitting, force-reject the
// pending queue, notify and close every admitted client, close the listener.
// Relay sends racing these steps fail silently against closed handles.
func (s *Server) Shutdown() {
	if !s.closing.CompareAndSwap(false, true) {
		return
	}
	obs.Info("server.shutdown.begin", obs.Fields{})
	s.pending.drainReject()
	s.broadcastText("[Server]: Server shutting down.", nil)
	for _, c := range s.registry.drain() {
		_ = c.conn.Close()
		s.presence.Leave(c.id)
	}
	s.lnMu.Lock()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	s.lnMu.Unlock()
}

// rejectConn sends the reject token best-effort and closes the handle.
func (s *Server) rejectConn(conn net.Conn) {
	_, _ = conn.Write([]byte(proto.Reject))
	_ = conn.Close()
}
