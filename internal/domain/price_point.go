package domain

// PricePoint is one VWAP bucket aggregated from raw trade prints.
// Corresponds to price_history table in ClickHouse.
type PricePoint struct {
	TokenID         string  // token identifier
	BucketStart     int64   // interval start, Unix timestamp in milliseconds
	IntervalSeconds int     // bucket width: 60, 300, 900, 3600
	Price           float64 // volume-weighted average price
	Volume          float64 // total token volume in bucket
	TxCount         int     // number of transactions aggregated
}

// Supported price history bucket widths (in seconds)
const (
	Interval1Min  = 60
	Interval5Min  = 300
	Interval15Min = 900
	Interval1Hour = 3600
)

// HistorySummary holds window-level metrics over a price history series.
type HistorySummary struct {
	CurrentPrice    float64 // last bucket VWAP
	HighPrice       float64 // max bucket VWAP in window
	LowPrice        float64 // min bucket VWAP in window
	Change          float64 // last - first bucket VWAP
	ChangePct       float64 // change as % of first bucket VWAP
	TotalVolume     float64 // sum of bucket volumes
	AvgBucketVolume float64 // totalVolume / bucket count
	TxCount         int     // total transactions in window
	Buckets         int     // number of buckets
}
