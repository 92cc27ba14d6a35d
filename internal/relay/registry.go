package relay

import (
	"net"
	"sort"
	"sync"

	"github.com/matst80/relayroom/internal/obs"
	"github.com/matst80/relayroom/internal/proto"
)

// ClientInfo is the operator-facing snapshot of one admitted client.
type ClientInfo struct {
	ID   int
	Name string
	Addr string
}

// client is one admitted, actively-relaying connection. The conn is owned by
// the client's relay session.
type client struct {
	id   int
	name string
	addr string
	conn net.Conn
}

// registry is the authoritative set of admitted connections. Its mutex is held
// only for in-memory mutations and snapshots, never across a network send.
type registry struct {
	mu     sync.Mutex
	nextID int
	byConn map[net.Conn]*client
}

func newRegistry() *registry {
	return &registry{nextID: 1, byConn: make(map[net.Conn]*client)}
}

// register allocates the next client id and inserts the connection.
func (r *registry) register(conn net.Conn, name, addr string) *client {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &client{id: r.nextID, name: name, addr: addr, conn: conn}
	r.nextID++
	r.byConn[conn] = c
	obs.ActiveClients.Set(float64(len(r.byConn)))
	return c
}

// remove deletes the connection if present. Ids are never reused; double
// removal reports false on the second call.
func (r *registry) remove(conn net.Conn) (*client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byConn[conn]
	if !ok {
		return nil, false
	}
	delete(r.byConn, conn)
	obs.ActiveClients.Set(float64(len(r.byConn)))
	return c, true
}

// snapshot returns the current member connections except exclude. Callers send
// to the returned conns without holding the registry lock.
func (r *registry) snapshot(exclude net.Conn) []net.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns := make([]net.Conn, 0, len(r.byConn))
	for conn := range r.byConn {
		if conn == exclude {
			continue
		}
		conns = append(conns, conn)
	}
	return conns
}

func (r *registry) list() []ClientInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ClientInfo, 0, len(r.byConn))
	for _, c := range r.byConn {
		out = append(out, ClientInfo{ID: c.id, Name: c.name, Addr: c.addr})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *registry) findByID(id int) net.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	for conn, c := range r.byConn {
		if c.id == id {
			return conn
		}
	}
	return nil
}

// participants lists current members except exclude, for the voice roster line.
func (r *registry) participants(exclude net.Conn) []proto.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]proto.Participant, 0, len(r.byConn))
	for conn, c := range r.byConn {
		if conn == exclude {
			continue
		}
		out = append(out, proto.Participant{ID: c.id, Name: c.name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// drain removes every client at once, for shutdown. No per-client notifications.
func (r *registry) drain() []*client {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*client, 0, len(r.byConn))
	for conn, c := range r.byConn {
		out = append(out, c)
		delete(r.byConn, conn)
	}
	obs.ActiveClients.Set(0)
	return out
}
