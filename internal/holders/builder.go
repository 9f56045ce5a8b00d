// Package holders reconstructs holder balances and per-holder P&L by
// replaying a token's transaction history. The output is a projection of
// the immutable transaction log, never a second source of truth.
package holders

import (
	"sort"

	"meme-launchpad/internal/domain"
)

// Projection limits and whale thresholds.
const (
	MaxHolders         = 100
	WhaleSupplyPct     = 1.0    // holding over 1% of total supply
	WhalePositionValue = 10_000 // or a position worth over this in SOL
)

// Build replays transactions (ordered by time ascending) into the holder
// list: balances, cost basis, realized and unrealized P&L, whale flags.
// Addresses with a non-positive net balance are excluded. Output is sorted
// descending by balance and capped at MaxHolders.
func Build(txs []*domain.Transaction, currentPrice, totalSupply float64) []*domain.Holder {
	byAddress := make(map[string]*domain.Holder)

	for _, tx := range txs {
		h, ok := byAddress[tx.UserAddress]
		if !ok {
			h = &domain.Holder{Address: tx.UserAddress}
			byAddress[tx.UserAddress] = h
		}

		switch tx.Type {
		case domain.TxTypeBuy:
			h.TotalBought += tx.Amount
			h.TotalSolSpent += tx.SolAmount
			if h.FirstBuyAt == 0 {
				h.FirstBuyAt = tx.CreatedAt
			}
		case domain.TxTypeSell:
			h.TotalSold += tx.Amount
			h.TotalSolReceived += tx.SolAmount
		}
		if tx.CreatedAt > h.LastActivityAt {
			h.LastActivityAt = tx.CreatedAt
		}
	}

	holders := make([]*domain.Holder, 0, len(byAddress))
	for _, h := range byAddress {
		h.Balance = h.TotalBought - h.TotalSold
		if h.Balance <= 0 {
			continue
		}

		if h.TotalBought > 0 {
			h.AverageBuyPrice = h.TotalSolSpent / h.TotalBought
		}
		if h.TotalSold > 0 {
			h.AverageSellPrice = h.TotalSolReceived / h.TotalSold
		}
		h.UnrealizedPNL = (currentPrice - h.AverageBuyPrice) * h.Balance
		h.RealizedPNL = (h.AverageSellPrice - h.AverageBuyPrice) * h.TotalSold

		if totalSupply > 0 {
			h.Percentage = h.Balance / totalSupply * 100
		}
		h.IsWhale = h.Percentage > WhaleSupplyPct || h.Balance*currentPrice > WhalePositionValue

		holders = append(holders, h)
	}

	sort.Slice(holders, func(i, j int) bool {
		if holders[i].Balance != holders[j].Balance {
			return holders[i].Balance > holders[j].Balance
		}
		return holders[i].Address < holders[j].Address
	})

	if len(holders) > MaxHolders {
		holders = holders[:MaxHolders]
	}
	return holders
}
