package pricehistory

import (
	"context"
	"fmt"
	"log"
	"time"

	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/storage"
)

// DefaultLookbackHours is used when the caller requests zero hours.
const DefaultLookbackHours = 24

// Service builds price history from the transaction log and optionally
// maintains a persisted rolling view of the buckets.
type Service struct {
	txs    storage.TransactionStore
	points storage.PricePointStore // nil disables persistence
	logger *log.Logger
	now    func() int64
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithPointStore enables persisting aggregated buckets.
func WithPointStore(points storage.PricePointStore) ServiceOption {
	return func(s *Service) { s.points = points }
}

// WithLogger sets the service's logger.
func WithLogger(l *log.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the timestamp source.
func WithClock(now func() int64) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a price history service.
func NewService(txs storage.TransactionStore, opts ...ServiceOption) *Service {
	s := &Service{
		txs:    txs,
		logger: log.New(log.Writer(), "[pricehistory] ", log.LstdFlags),
		now:    func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetHistory aggregates the token's trades over the look-back window into
// VWAP buckets of the given width. hours <= 0 means DefaultLookbackHours;
// an unsupported interval falls back to the default granularity.
func (s *Service) GetHistory(ctx context.Context, tokenID string, hours, intervalSeconds int) ([]*domain.PricePoint, error) {
	if hours <= 0 {
		hours = DefaultLookbackHours
	}
	since := s.now() - int64(hours)*int64(time.Hour/time.Millisecond)

	txs, err := s.txs.GetByTokenSince(ctx, tokenID, since)
	if err != nil {
		return nil, fmt.Errorf("load transactions for %s: %w", tokenID, err)
	}
	return Aggregate(tokenID, txs, intervalSeconds), nil
}

// GetSummary aggregates the window and reduces it to summary metrics.
func (s *Service) GetSummary(ctx context.Context, tokenID string, hours, intervalSeconds int) (domain.HistorySummary, error) {
	points, err := s.GetHistory(ctx, tokenID, hours, intervalSeconds)
	if err != nil {
		return domain.HistorySummary{}, err
	}
	return Summarize(points), nil
}

// Rebuild recomputes the persisted view for a token at one granularity
// from the full transaction log, replacing whatever was stored. Used by
// the backfill job.
func (s *Service) Rebuild(ctx context.Context, tokenID string, intervalSeconds int) (int, error) {
	if s.points == nil {
		return 0, fmt.Errorf("no price point store configured")
	}
	if !SupportedInterval(intervalSeconds) {
		return 0, fmt.Errorf("unsupported interval %ds", intervalSeconds)
	}

	txs, err := s.txs.GetByToken(ctx, tokenID)
	if err != nil {
		return 0, fmt.Errorf("load transactions for %s: %w", tokenID, err)
	}
	points := Aggregate(tokenID, txs, intervalSeconds)

	if err := s.points.DeleteByToken(ctx, tokenID, intervalSeconds); err != nil {
		return 0, fmt.Errorf("clear view for %s: %w", tokenID, err)
	}
	if len(points) == 0 {
		return 0, nil
	}
	if err := s.points.InsertBulk(ctx, points); err != nil {
		return 0, fmt.Errorf("write view for %s: %w", tokenID, err)
	}

	s.logger.Printf("rebuilt price history for %s: %d buckets at %ds", tokenID, len(points), intervalSeconds)
	return len(points), nil
}
