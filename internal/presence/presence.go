// Package presence mirrors the admitted-client roster into an external store
// so dashboards can see who is connected without talking to the relay itself.
// The relay stays authoritative; every publish is best-effort.
package presence

// Publisher receives roster changes. Implementations must tolerate being
// called concurrently and must never fail the caller.
type Publisher interface {
	Join(id int, name, addr string)
	Leave(id int)
	Close() error
}

type nopPublisher struct{}

// NewNop returns a Publisher that drops everything, for deployments without
// an external store.
func NewNop() Publisher { return nopPublisher{} }

func (nopPublisher) Join(int, string, string) {}
func (nopPublisher) Leave(int)                {}
func (nopPublisher) Close() error             { return nil }
