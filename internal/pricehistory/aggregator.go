// Package pricehistory buckets raw trade prints into fixed-width time
// intervals and computes the volume-weighted average price per bucket. A
// rolling materialized view of the output can be persisted and rebuilt
// from the transaction log at any time.
package pricehistory

import (
	"sort"

	"meme-launchpad/internal/domain"
)

// DefaultIntervalSeconds is the bucket width used when the caller does
// not pick one.
const DefaultIntervalSeconds = domain.Interval15Min

// maxSanePrice filters out corrupt prints. No real token on the curve
// trades anywhere near this.
const maxSanePrice = 1e6

var supportedIntervals = map[int]bool{
	domain.Interval1Min:  true,
	domain.Interval5Min:  true,
	domain.Interval15Min: true,
	domain.Interval1Hour: true,
}

// SupportedInterval reports whether the bucket width is one of the
// supported granularities.
func SupportedInterval(seconds int) bool {
	return supportedIntervals[seconds]
}

// Aggregate buckets transactions into VWAP points of the given width.
// Prints with a non-positive or absurd price are dropped as noise. Output
// is sorted ascending by bucket start. An unsupported interval falls back
// to DefaultIntervalSeconds.
func Aggregate(tokenID string, txs []*domain.Transaction, intervalSeconds int) []*domain.PricePoint {
	if !SupportedInterval(intervalSeconds) {
		intervalSeconds = DefaultIntervalSeconds
	}
	widthMs := int64(intervalSeconds) * 1000

	type bucket struct {
		weighted float64 // Σ price*volume
		priceSum float64 // Σ price, for the zero-volume fallback
		volume   float64
		count    int
	}
	buckets := make(map[int64]*bucket)

	for _, tx := range txs {
		price := tx.Price
		if price == 0 && tx.Amount > 0 {
			price = tx.SolAmount / tx.Amount
		}
		if price <= 0 || price > maxSanePrice {
			continue
		}

		start := tx.CreatedAt / widthMs * widthMs
		b, ok := buckets[start]
		if !ok {
			b = &bucket{}
			buckets[start] = b
		}
		b.weighted += price * tx.Amount
		b.priceSum += price
		b.volume += tx.Amount
		b.count++
	}

	points := make([]*domain.PricePoint, 0, len(buckets))
	for start, b := range buckets {
		vwap := b.priceSum / float64(b.count) // simple mean when volume is 0
		if b.volume > 0 {
			vwap = b.weighted / b.volume
		}
		points = append(points, &domain.PricePoint{
			TokenID:         tokenID,
			BucketStart:     start,
			IntervalSeconds: intervalSeconds,
			Price:           vwap,
			Volume:          b.volume,
			TxCount:         b.count,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].BucketStart < points[j].BucketStart
	})
	return points
}

// Summarize computes window-level metrics over an ascending point series.
func Summarize(points []*domain.PricePoint) domain.HistorySummary {
	var s domain.HistorySummary
	if len(points) == 0 {
		return s
	}

	s.Buckets = len(points)
	s.LowPrice = points[0].Price
	for _, p := range points {
		if p.Price > s.HighPrice {
			s.HighPrice = p.Price
		}
		if p.Price < s.LowPrice {
			s.LowPrice = p.Price
		}
		s.TotalVolume += p.Volume
		s.TxCount += p.TxCount
	}

	first := points[0].Price
	last := points[len(points)-1].Price
	s.CurrentPrice = last
	s.Change = last - first
	if first != 0 {
		s.ChangePct = s.Change / first * 100
	}
	s.AvgBucketVolume = s.TotalVolume / float64(len(points))
	return s
}
