package reporting

import (
	"context"
	"sort"
	"time"

	"meme-launchpad/internal/curve"
	"meme-launchpad/internal/risk"
	"meme-launchpad/internal/storage"
)

// tokenPageSize is the List page size used while walking the catalog.
const tokenPageSize = 500

// DefaultTopTokens caps the top tokens table.
const DefaultTopTokens = 25

// Generator produces market reports from stored data.
type Generator struct {
	tokens    storage.TokenStore
	txs       storage.TransactionStore
	engine    *curve.Engine
	topTokens int
	now       func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(tokens storage.TokenStore, txs storage.TransactionStore, engine *curve.Engine) *Generator {
	return &Generator{
		tokens:    tokens,
		txs:       txs,
		engine:    engine,
		topTokens: DefaultTopTokens,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithTopTokens overrides the top tokens table size.
func (g *Generator) WithTopTokens(n int) *Generator {
	g.topTokens = n
	return g
}

// Generate produces a complete market report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	now := g.now()
	since := now.UnixMilli() - 24*time.Hour.Milliseconds()

	report := &Report{GeneratedAt: now}
	levelCounts := make(map[risk.Level]int)

	// The token list comes back ordered by market cap, so the first page
	// already holds the top tokens table.
	for offset := 0; ; offset += tokenPageSize {
		page, err := g.tokens.List(ctx, tokenPageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, t := range page {
			report.Market.TokenCount++
			report.Market.TotalMarketCap += t.MarketCap
			levelCounts[risk.LevelFor(t.RugScore)]++

			if t.IsGraduated {
				report.Market.GraduatedCount++
				row := GraduationRow{
					Symbol:    t.Symbol,
					Name:      t.Name,
					MarketCap: t.MarketCap,
				}
				if t.GraduatedAt != nil {
					row.GraduatedAt = *t.GraduatedAt
				}
				report.Graduations = append(report.Graduations, row)
			}

			if len(report.TopTokens) < g.topTokens {
				report.TopTokens = append(report.TopTokens, TokenRow{
					Symbol:    t.Symbol,
					Name:      t.Name,
					Price:     t.Price,
					MarketCap: t.MarketCap,
					Progress:  g.engine.Progress(t.CurrentSupply),
					RugScore:  t.RugScore,
					Graduated: t.IsGraduated,
				})
			}

			recent, err := g.txs.GetByTokenSince(ctx, t.ID, since)
			if err != nil {
				return nil, err
			}
			if len(recent) > 0 {
				report.Market.ActiveTokens24h++
			}
			report.Market.Transactions24h += len(recent)
			for _, tx := range recent {
				report.Market.Volume24h += tx.SolAmount
			}
		}

		if len(page) < tokenPageSize {
			break
		}
	}

	report.RiskDistribution = riskDistribution(levelCounts, report.Market.TokenCount)

	sort.Slice(report.Graduations, func(i, j int) bool {
		return report.Graduations[i].GraduatedAt > report.Graduations[j].GraduatedAt
	})

	return report, nil
}

// riskDistribution flattens the level counts in fixed level order.
func riskDistribution(counts map[risk.Level]int, total int) []RiskBucketRow {
	order := []risk.Level{
		risk.LevelVeryLow, risk.LevelLow, risk.LevelMedium,
		risk.LevelHigh, risk.LevelVeryHigh, risk.LevelExtreme,
	}

	rows := make([]RiskBucketRow, 0, len(order))
	for _, level := range order {
		count := counts[level]
		var pct float64
		if total > 0 {
			pct = float64(count) / float64(total) * 100
		}
		rows = append(rows, RiskBucketRow{Level: string(level), Count: count, Pct: pct})
	}
	return rows
}
