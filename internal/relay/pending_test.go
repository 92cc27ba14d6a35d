package relay

import (
	"net"
	"sync"
	"testing"
	"time"
)

func pipeConn(t *testing.T) net.Conn {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() { _ = a.Close(); _ = b.Close() })
	return a
}

func TestPendingResolveDeliversDecisionOnce(t *testing.T) {
	tbl := newPendingTable()
	p := tbl.create(pipeConn(t), "alice", "127.0.0.1:1111")

	if !tbl.resolve(p.id, true) {
		t.Fatal("resolve of a live pending id returned false")
	}
	select {
	case accepted := <-p.decision:
		if !accepted {
			t.Error("decision = rejected, want accepted")
		}
	case <-time.After(time.Second):
		t.Fatal("decision never delivered")
	}

	// The id is gone the moment it was resolved.
	if tbl.resolve(p.id, false) {
		t.Error("second resolve of the same id returned true")
	}
}

func TestPendingResolveUnknownIsNoop(t *testing.T) {
	tbl := newPendingTable()
	if tbl.resolve(42, true) {
		t.Error("resolving an unknown id returned true")
	}
}

func TestPendingIDsAreMonotonic(t *testing.T) {
	tbl := newPendingTable()
	a := tbl.create(pipeConn(t), "a", "addr")
	tbl.resolve(a.id, false)
	<-a.decision
	b := tbl.create(pipeConn(t), "b", "addr")
	if b.id <= a.id {
		t.Errorf("ids not monotonic: %d then %d", a.id, b.id)
	}
}

func TestPendingConcurrentResolves(t *testing.T) {
	tbl := newPendingTable()
	const n = 32
	reqs := make([]*pendingRequest, n)
	for i := range reqs {
		reqs[i] = tbl.create(pipeConn(t), "client", "addr")
	}

	// Resolve every id from several goroutines at once; each waiter must see
	// exactly the decision set for its id.
	var wg sync.WaitGroup
	for i, p := range reqs {
		wg.Add(1)
		go func(i int, p *pendingRequest) {
			defer wg.Done()
			tbl.resolve(p.id, i%2 == 0)
		}(i, p)
	}
	wg.Wait()

	for i, p := range reqs {
		select {
		case accepted := <-p.decision:
			if accepted != (i%2 == 0) {
				t.Errorf("request %d observed wrong decision", p.id)
			}
		case <-time.After(time.Second):
			t.Fatalf("request %d never woken", p.id)
		}
	}
	if got := tbl.list(); len(got) != 0 {
		t.Errorf("table not empty after resolving everything: %v", got)
	}
}

func TestPendingDrainRejectWakesAllWaiters(t *testing.T) {
	tbl := newPendingTable()
	var reqs []*pendingRequest
	for i := 0; i < 5; i++ {
		reqs = append(reqs, tbl.create(pipeConn(t), "client", "addr"))
	}

	tbl.drainReject()

	for _, p := range reqs {
		select {
		case accepted := <-p.decision:
			if accepted {
				t.Errorf("request %d accepted by drain, want rejected", p.id)
			}
		case <-time.After(time.Second):
			t.Fatalf("request %d never woken by drain", p.id)
		}
	}

	// A handshake racing shutdown gets a pre-rejected request back.
	late := tbl.create(pipeConn(t), "late", "addr")
	select {
	case accepted := <-late.decision:
		if accepted {
			t.Error("post-drain create was accepted")
		}
	case <-time.After(time.Second):
		t.Fatal("post-drain create never resolved")
	}
}

func TestPendingListSnapshot(t *testing.T) {
	tbl := newPendingTable()
	tbl.create(pipeConn(t), "alice", "127.0.0.1:1111")
	tbl.create(pipeConn(t), "bob", "127.0.0.1:2222")

	got := tbl.list()
	if len(got) != 2 {
		t.Fatalf("list len = %d, want 2", len(got))
	}
	if got[0].Name != "alice" || got[1].Name != "bob" {
		t.Errorf("list not ordered by id: %v", got)
	}
}
