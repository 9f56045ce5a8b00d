package risk

// Level is the display bucket for a rug score.
type Level string

// Risk levels ordered from safest to riskiest.
const (
	LevelVeryLow  Level = "VERY_LOW"
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelVeryHigh Level = "VERY_HIGH"
	LevelExtreme  Level = "EXTREME"
)

// levelInfo is the static display table for a level.
type levelInfo struct {
	color          string
	recommendation string
}

var levelTable = map[Level]levelInfo{
	LevelVeryLow:  {"#22c55e", "Well-prepared launch. Standard market risk applies."},
	LevelLow:      {"#84cc16", "Minor gaps in token metadata. Proceed with normal caution."},
	LevelMedium:   {"#eab308", "Several red flags. Review the token details before trading."},
	LevelHigh:     {"#f97316", "High risk profile. Trade only what you can afford to lose."},
	LevelVeryHigh: {"#ef4444", "Very high rug risk. Strongly consider avoiding this token."},
	LevelExtreme:  {"#991b1b", "Extreme rug risk. Avoid this token."},
}

// LevelFor maps a score in [0,100] to its display level.
func LevelFor(score int) Level {
	switch {
	case score < 15:
		return LevelVeryLow
	case score < 30:
		return LevelLow
	case score < 50:
		return LevelMedium
	case score < 70:
		return LevelHigh
	case score < 85:
		return LevelVeryHigh
	default:
		return LevelExtreme
	}
}

// Color returns the fixed display color for the level.
func (l Level) Color() string {
	return levelTable[l].color
}

// Recommendation returns the fixed recommendation string for the level.
func (l Level) Recommendation() string {
	return levelTable[l].recommendation
}
