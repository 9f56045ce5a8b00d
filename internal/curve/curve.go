// Package curve implements the constant-product bonding curve over virtual
// reserves. All functions are pure and deterministic: identical inputs
// produce bit-identical outputs, which replay and audit paths depend on.
package curve

import (
	"errors"
	"math"
)

// ErrGraduated is returned when swap math is requested for a token whose
// supply has already reached the graduation target.
var ErrGraduated = errors.New("token has graduated: curve trading closed")

// Params holds the immutable curve configuration. The reserves are
// bookkeeping constants, not escrowed balances: the SOL reserve never
// tracks real inflow.
type Params struct {
	VirtualSolReserves   float64 // SOL side of the virtual pool
	VirtualTokenReserves float64 // token side of the virtual pool
	TargetSupply         float64 // supply at which the token graduates
	GraduationMarketCap  float64 // market cap threshold for graduation (SOL)
	BuyFeeRate           float64 // fee on the SOL leg of buys
	SellFeeRate          float64 // fee on the SOL leg of sells
}

// DefaultParams returns the production curve configuration.
func DefaultParams() Params {
	return Params{
		VirtualSolReserves:   30,
		VirtualTokenReserves: 1_073_000_000,
		TargetSupply:         800_000_000,
		GraduationMarketCap:  30,
		BuyFeeRate:           0.01,
		SellFeeRate:          0.05,
	}
}

// Engine computes prices and swap outputs for a fixed parameter set.
type Engine struct {
	params Params
}

// New creates an engine with the given parameters.
func New(params Params) *Engine {
	return &Engine{params: params}
}

// Params returns the engine's configuration.
func (e *Engine) Params() Params {
	return e.params
}

// Price returns the spot price in SOL per token at the given issued supply.
// Past the graduation target the price is flat at GraduationMarketCap/TargetSupply.
func (e *Engine) Price(supply float64) float64 {
	if supply >= e.params.TargetSupply {
		return e.params.GraduationMarketCap / e.params.TargetSupply
	}
	tokenReserve := e.params.VirtualTokenReserves - supply
	if tokenReserve <= 0 {
		return 0
	}
	return e.params.VirtualSolReserves / tokenReserve
}

// TokensForSol returns the token amount received for solIn SOL at the given
// supply. The output is floored to a whole token count.
func (e *Engine) TokensForSol(solIn, supply float64) (float64, error) {
	if supply >= e.params.TargetSupply {
		return 0, ErrGraduated
	}
	tokenReserve := e.params.VirtualTokenReserves - supply
	k := e.params.VirtualSolReserves * tokenReserve
	newTokenReserve := k / (e.params.VirtualSolReserves + solIn)
	return math.Floor(tokenReserve - newTokenReserve), nil
}

// SolForTokens returns the gross SOL received for selling tokensIn tokens at
// the given supply, before the sell fee is applied.
func (e *Engine) SolForTokens(tokensIn, supply float64) (float64, error) {
	if supply >= e.params.TargetSupply {
		return 0, ErrGraduated
	}
	tokenReserve := e.params.VirtualTokenReserves - supply
	k := e.params.VirtualSolReserves * tokenReserve
	newSolReserve := k / (tokenReserve + tokensIn)
	return math.Max(0, e.params.VirtualSolReserves-newSolReserve), nil
}

// MarketCap returns supply * price, flat at GraduationMarketCap once the
// supply has reached the graduation target.
func (e *Engine) MarketCap(supply float64) float64 {
	if supply >= e.params.TargetSupply {
		return e.params.GraduationMarketCap
	}
	return supply * e.Price(supply)
}

// Progress returns graduation progress as a percentage, capped at 100.
func (e *Engine) Progress(supply float64) float64 {
	return math.Min(100, 100*supply/e.params.TargetSupply)
}

// ShouldGraduate reports whether a token at the given supply and market cap
// must graduate. Monotonic: once true it stays true for any larger inputs.
func (e *Engine) ShouldGraduate(supply, marketCap float64) bool {
	return supply >= e.params.TargetSupply || marketCap >= e.params.GraduationMarketCap
}

// BuyFee returns the fee charged on the SOL leg of a buy.
func (e *Engine) BuyFee(solAmount float64) float64 {
	return solAmount * e.params.BuyFeeRate
}

// SellFee returns the fee charged on the gross SOL leg of a sell.
func (e *Engine) SellFee(grossSol float64) float64 {
	return grossSol * e.params.SellFeeRate
}
