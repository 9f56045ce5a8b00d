package holders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/storage"
)

// DefaultCacheTTL bounds staleness of the holder projection. The data is
// informational, never authoritative for settlement, so minutes are fine.
const DefaultCacheTTL = 2 * time.Minute

// Service serves holder projections with a short-TTL cache. A cache-miss
// storm for one token computes the projection once; concurrent callers
// share the in-flight result.
type Service struct {
	tokens storage.TokenStore
	txs    storage.TransactionStore
	ttl    time.Duration
	now    func() time.Time

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	holders   []*domain.Holder
	expiresAt time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCacheTTL overrides the cache TTL. Zero disables caching.
func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.ttl = ttl }
}

// WithServiceClock overrides the time source.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a holder projection service.
func NewService(tokens storage.TokenStore, txs storage.TransactionStore, opts ...ServiceOption) *Service {
	s := &Service{
		tokens: tokens,
		txs:    txs,
		ttl:    DefaultCacheTTL,
		now:    time.Now,
		cache:  make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetHolders returns up to limit holders for the token, whales first by
// balance. limit <= 0 or > MaxHolders returns the full projection.
func (s *Service) GetHolders(ctx context.Context, tokenID string, limit int) ([]*domain.Holder, error) {
	holders, err := s.projection(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(holders) {
		holders = holders[:limit]
	}
	return holders, nil
}

// GetWhales returns only the holders flagged as whales.
func (s *Service) GetWhales(ctx context.Context, tokenID string) ([]*domain.Holder, error) {
	holders, err := s.projection(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	whales := make([]*domain.Holder, 0, len(holders))
	for _, h := range holders {
		if h.IsWhale {
			whales = append(whales, h)
		}
	}
	return whales, nil
}

// Refresh drops the cached projection so the next read rebuilds it.
func (s *Service) Refresh(tokenID string) {
	s.mu.Lock()
	delete(s.cache, tokenID)
	s.mu.Unlock()
}

func (s *Service) projection(ctx context.Context, tokenID string) ([]*domain.Holder, error) {
	if s.ttl > 0 {
		s.mu.RLock()
		entry, ok := s.cache[tokenID]
		s.mu.RUnlock()
		if ok && s.now().Before(entry.expiresAt) {
			return entry.holders, nil
		}
	}

	v, err, _ := s.group.Do(tokenID, func() (interface{}, error) {
		return s.build(ctx, tokenID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Holder), nil
}

func (s *Service) build(ctx context.Context, tokenID string) ([]*domain.Holder, error) {
	token, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("load token %s: %w", tokenID, err)
	}
	txs, err := s.txs.GetByToken(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("load transactions for %s: %w", tokenID, err)
	}

	holders := Build(txs, token.Price, token.TotalSupply)

	if s.ttl > 0 {
		s.mu.Lock()
		s.cache[tokenID] = cacheEntry{holders: holders, expiresAt: s.now().Add(s.ttl)}
		s.mu.Unlock()
	}
	return holders, nil
}
