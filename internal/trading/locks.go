package trading

import "sync"

// tokenLocks serializes the quote-to-settle window per token. Trades
// against different tokens never contend; entries are reference counted
// and removed when the last holder releases, so the map does not grow
// with the token catalog.
type tokenLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newTokenLocks() *tokenLocks {
	return &tokenLocks{entries: make(map[string]*lockEntry)}
}

func (l *tokenLocks) lock(tokenID string) {
	l.mu.Lock()
	e, ok := l.entries[tokenID]
	if !ok {
		e = &lockEntry{}
		l.entries[tokenID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
}

func (l *tokenLocks) unlock(tokenID string) {
	l.mu.Lock()
	e := l.entries[tokenID]
	e.refs--
	if e.refs == 0 {
		delete(l.entries, tokenID)
	}
	l.mu.Unlock()

	e.mu.Unlock()
}
