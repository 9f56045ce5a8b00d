package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Market Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Market Summary
	sb.WriteString("## Market Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Tokens | %d |\n", r.Market.TokenCount))
	sb.WriteString(fmt.Sprintf("| Graduated | %d |\n", r.Market.GraduatedCount))
	sb.WriteString(fmt.Sprintf("| Total Market Cap (SOL) | %.4f |\n", r.Market.TotalMarketCap))
	sb.WriteString(fmt.Sprintf("| 24h Volume (SOL) | %.4f |\n", r.Market.Volume24h))
	sb.WriteString(fmt.Sprintf("| 24h Transactions | %d |\n", r.Market.Transactions24h))
	sb.WriteString(fmt.Sprintf("| 24h Active Tokens | %d |\n", r.Market.ActiveTokens24h))
	sb.WriteString("\n")

	// Top Tokens
	sb.WriteString("## Top Tokens by Market Cap\n\n")
	if len(r.TopTokens) > 0 {
		sb.WriteString("| Symbol | Name | Price (SOL) | Market Cap | Progress | Rug Score | Graduated |\n")
		sb.WriteString("|--------|------|-------------|------------|----------|-----------|----------|\n")
		for _, t := range r.TopTokens {
			graduated := "no"
			if t.Graduated {
				graduated = "yes"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %.9f | %.4f | %.1f%% | %d | %s |\n",
				t.Symbol, t.Name, t.Price, t.MarketCap, t.Progress, t.RugScore, graduated))
		}
	} else {
		sb.WriteString("No tokens launched yet.\n")
	}
	sb.WriteString("\n")

	// Risk Distribution
	sb.WriteString("## Risk Distribution\n\n")
	sb.WriteString("| Level | Tokens | Share |\n")
	sb.WriteString("|-------|--------|-------|\n")
	for _, b := range r.RiskDistribution {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.1f%% |\n", b.Level, b.Count, b.Pct))
	}
	sb.WriteString("\n")

	// Graduations
	sb.WriteString("## Graduations\n\n")
	if len(r.Graduations) > 0 {
		sb.WriteString("| Symbol | Name | Market Cap | Graduated At (ms) |\n")
		sb.WriteString("|--------|------|------------|-------------------|\n")
		for _, gr := range r.Graduations {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.4f | %d |\n",
				gr.Symbol, gr.Name, gr.MarketCap, gr.GraduatedAt))
		}
	} else {
		sb.WriteString("No tokens have graduated.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
