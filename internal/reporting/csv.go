package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the top tokens table as CSV string.
func RenderCSV(tokens []TokenRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("symbol,name,price_sol,market_cap_sol,progress_pct,rug_score,graduated\n")

	// Rows
	for _, t := range tokens {
		sb.WriteString(fmt.Sprintf("%s,%s,%.9f,%.6f,%.2f,%d,%t\n",
			t.Symbol,
			t.Name,
			t.Price,
			t.MarketCap,
			t.Progress,
			t.RugScore,
			t.Graduated,
		))
	}

	return sb.String()
}
