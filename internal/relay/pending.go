package relay

import (
	"net"
	"sort"
	"sync"

	"github.com/matst80/relayroom/internal/obs"
)

// PendingInfo is the operator-facing snapshot of one connection awaiting an
// admission decision.
type PendingInfo struct {
	ID   int
	Name string
	Addr string
}

// pendingRequest is one handshake-completed connection gated on the operator.
// The decision channel is buffered so a resolver never blocks; the admission
// controller is the sole receiver.
type pendingRequest struct {
	id       int
	conn     net.Conn
	name     string
	addr     string
	decision chan bool
}

// pendingTable is the authoritative set of pending requests. Ids come from a
// numbering space separate from client ids.
type pendingTable struct {
	mu      sync.Mutex
	nextID  int
	closed  bool
	entries map[int]*pendingRequest
}

func newPendingTable() *pendingTable {
	return &pendingTable{nextID: 1, entries: make(map[int]*pendingRequest)}
}

// create allocates the next pending id and inserts the request. After
// drainReject the table is closed and new requests come back pre-rejected, so
// a handshake racing shutdown cannot strand its controller.
func (t *pendingTable) create(conn net.Conn, name, addr string) *pendingRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := &pendingRequest{id: t.nextID, conn: conn, name: name, addr: addr, decision: make(chan bool, 1)}
	t.nextID++
	if t.closed {
		p.decision <- false
		return p
	}
	t.entries[p.id] = p
	obs.PendingRequests.Set(float64(len(t.entries)))
	return p
}

// resolve removes the entry and delivers the decision to its waiting
// controller. A stale or unknown id is a normal no-op outcome, reported false.
func (t *pendingTable) resolve(id int, accepted bool) bool {
	t.mu.Lock()
	p, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
		obs.PendingRequests.Set(float64(len(t.entries)))
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	p.decision <- accepted
	return true
}

func (t *pendingTable) list() []PendingInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]PendingInfo, 0, len(t.entries))
	for _, p := range t.entries {
		out = append(out, PendingInfo{ID: p.id, Name: p.name, Addr: p.addr})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// drainReject forces a rejected decision on every outstanding request and
// closes the table. Called exactly once, during shutdown.
func (t *pendingTable) drainReject() {
	t.mu.Lock()
	t.closed = true
	drained := make([]*pendingRequest, 0, len(t.entries))
	for id, p := range t.entries {
		drained = append(drained, p)
		delete(t.entries, id)
	}
	obs.PendingRequests.Set(0)
	t.mu.Unlock()
	for _, p := range drained {
		p.decision <- false
	}
}
