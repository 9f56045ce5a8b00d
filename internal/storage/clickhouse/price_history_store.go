package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/storage"
)

// PriceHistoryStore implements storage.PricePointStore using ClickHouse.
// The table is a rolling materialized view over the transaction log; rows
// can be deleted and rewritten by backfill at any time.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PricePointStore = (*PriceHistoryStore)(nil)

// InsertBulk adds multiple buckets. Fails the batch on an intra-batch
// duplicate (token_id, interval_seconds, bucket_start); ClickHouse itself
// does not enforce uniqueness at insert time.
func (s *PriceHistoryStore) InsertBulk(ctx context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	type key struct {
		tokenID         string
		intervalSeconds int
		bucketStart     int64
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		k := key{p.TokenID, p.IntervalSeconds, p.BucketStart}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_history (
			token_id, bucket_start, interval_seconds, price, volume, tx_count
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.TokenID, uint64(p.BucketStart), uint32(p.IntervalSeconds),
			p.Price, p.Volume, uint32(p.TxCount),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTokenRange retrieves buckets for a token at one granularity within
// [start, end] (inclusive), ordered by bucket_start ASC.
func (s *PriceHistoryStore) GetByTokenRange(ctx context.Context, tokenID string, intervalSeconds int, start, end int64) ([]*domain.PricePoint, error) {
	query := `
		SELECT token_id, bucket_start, interval_seconds, price, volume, tx_count
		FROM price_history
		WHERE token_id = ? AND interval_seconds = ?
		  AND bucket_start >= ? AND bucket_start <= ?
		ORDER BY bucket_start ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenID, uint32(intervalSeconds), uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query price history by range: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// DeleteByToken removes all buckets for a token at one granularity.
func (s *PriceHistoryStore) DeleteByToken(ctx context.Context, tokenID string, intervalSeconds int) error {
	query := `
		ALTER TABLE price_history
		DELETE WHERE token_id = ? AND interval_seconds = ?
	`

	if err := s.conn.Exec(ctx, query, tokenID, uint32(intervalSeconds)); err != nil {
		return fmt.Errorf("delete price history: %w", err)
	}
	return nil
}

// scanPricePoints scans rows into a slice of PricePoint.
func scanPricePoints(rows driver.Rows) ([]*domain.PricePoint, error) {
	var points []*domain.PricePoint

	for rows.Next() {
		var (
			p               domain.PricePoint
			bucketStart     uint64
			intervalSeconds uint32
			txCount         uint32
		)

		err := rows.Scan(&p.TokenID, &bucketStart, &intervalSeconds, &p.Price, &p.Volume, &txCount)
		if err != nil {
			return nil, fmt.Errorf("scan price history row: %w", err)
		}

		p.BucketStart = int64(bucketStart)
		p.IntervalSeconds = int(intervalSeconds)
		p.TxCount = int(txCount)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history rows: %w", err)
	}

	return points, nil
}
