package relay

import (
	"testing"
)

func TestRegistryRegisterAssignsMonotonicIDs(t *testing.T) {
	r := newRegistry()
	a := r.register(pipeConn(t), "alice", "127.0.0.1:1111")
	b := r.register(pipeConn(t), "bob", "127.0.0.1:2222")
	if a.id != 1 || b.id != 2 {
		t.Errorf("ids = %d, %d; want 1, 2", a.id, b.id)
	}

	// Ids are never reused, even after removal.
	r.remove(a.conn)
	c := r.register(pipeConn(t), "carol", "127.0.0.1:3333")
	if c.id != 3 {
		t.Errorf("id after removal = %d, want 3", c.id)
	}
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	r := newRegistry()
	a := r.register(pipeConn(t), "alice", "addr")

	if _, ok := r.remove(a.conn); !ok {
		t.Fatal("first remove reported missing")
	}
	if _, ok := r.remove(a.conn); ok {
		t.Error("second remove reported present")
	}
	if got := r.list(); len(got) != 0 {
		t.Errorf("list after removal = %v, want empty", got)
	}
}

func TestRegistrySnapshotExcludesSender(t *testing.T) {
	r := newRegistry()
	a := r.register(pipeConn(t), "alice", "addr")
	r.register(pipeConn(t), "bob", "addr")
	r.register(pipeConn(t), "carol", "addr")

	conns := r.snapshot(a.conn)
	if len(conns) != 2 {
		t.Fatalf("snapshot len = %d, want 2", len(conns))
	}
	for _, conn := range conns {
		if conn == a.conn {
			t.Error("snapshot contains the excluded conn")
		}
	}
}

func TestRegistryFindByID(t *testing.T) {
	r := newRegistry()
	a := r.register(pipeConn(t), "alice", "addr")

	if got := r.findByID(a.id); got != a.conn {
		t.Error("findByID returned the wrong conn")
	}
	if got := r.findByID(99); got != nil {
		t.Error("findByID of unknown id returned a conn")
	}
}

func TestRegistryParticipantsOrderedByID(t *testing.T) {
	r := newRegistry()
	r.register(pipeConn(t), "alice", "addr")
	b := r.register(pipeConn(t), "bob", "addr")
	r.register(pipeConn(t), "carol", "addr")

	parts := r.participants(b.conn)
	if len(parts) != 2 {
		t.Fatalf("participants len = %d, want 2", len(parts))
	}
	if parts[0].Name != "alice" || parts[1].Name != "carol" {
		t.Errorf("participants = %v", parts)
	}
}

func TestRegistryDrainEmptiesEverything(t *testing.T) {
	r := newRegistry()
	r.register(pipeConn(t), "alice", "addr")
	r.register(pipeConn(t), "bob", "addr")

	drained := r.drain()
	if len(drained) != 2 {
		t.Errorf("drain len = %d, want 2", len(drained))
	}
	if got := r.list(); len(got) != 0 {
		t.Errorf("list after drain = %v, want empty", got)
	}
}
