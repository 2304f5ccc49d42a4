package ledger

import (
	"sync"
)

// Broadcaster fans new ledger entries out to websocket subscribers. Slow
// subscribers are skipped rather than blocking the append path.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan Entry]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[chan Entry]struct{}),
	}
}

func (b *Broadcaster) Subscribe() chan Entry {
	ch := make(chan Entry, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan Entry) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Publish(entry Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- entry:
		default:
		}
	}
}
