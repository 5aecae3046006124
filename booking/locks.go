package booking

import "sync"

// keyedLocks hands out one mutex per id. The property set serializes the
// check-then-write admission sequence so two concurrent creations cannot both
// observe "no conflict" and both insert; the booking set serializes
// read-modify-save on a single booking so a lost update cannot drop
// cancellation metadata. Unrelated ids proceed fully in parallel. Mutexes are
// never removed; the map grows by one pointer per id ever locked on this
// instance.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[uint]*sync.Mutex)}
}

func (p *keyedLocks) get(id uint) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[id]
	if !ok {
		l = &sync.Mutex{}
		p.locks[id] = l
	}
	return l
}
