// Package risk implements the heuristic rug-risk model. Scoring is a flat
// ordered rule table evaluated uniformly and summed, capped at 100. The model
// looks only at creation-time metadata, never at trading activity.
package risk

import "strings"

// Metadata is the creation-time token metadata the model scores.
type Metadata struct {
	Name           string
	Symbol         string
	Description    string
	ImageURL       string
	BannerURL      string
	Website        string
	Twitter        string
	Telegram       string
	CreatorAddress string
	TotalSupply    float64
	InitialBuy     float64 // creator's dev buy in SOL, 0 if none
}

// MaxScore is the score cap.
const MaxScore = 100

// Address prefixes associated with burner or placeholder wallets.
var suspiciousPrefixes = []string{"1111", "dead", "burn"}

// Low-effort substrings checked against name+symbol, case-insensitive.
var lowEffortSubstrings = []string{"test", "123", "temp", "sample", "xxx"}

// rule is one independent scoring check. Rules never see each other's
// results; the model stays auditable as a flat table.
type rule struct {
	points int
	issue  string
	check  func(m *Metadata) bool
}

var rules = []rule{
	{20, "No creator address", func(m *Metadata) bool {
		return m.CreatorAddress == ""
	}},
	{10, "Creator address matches a suspicious prefix", func(m *Metadata) bool {
		addr := strings.ToLower(m.CreatorAddress)
		if addr == "" {
			return false
		}
		for _, p := range suspiciousPrefixes {
			if strings.HasPrefix(addr, p) {
				return true
			}
		}
		return false
	}},
	{15, "No social links", func(m *Metadata) bool {
		return m.socialCount() == 0
	}},
	{10, "Only one social link", func(m *Metadata) bool {
		return m.socialCount() == 1
	}},
	{5, "Only two social links", func(m *Metadata) bool {
		return m.socialCount() == 2
	}},
	{15, "No description", func(m *Metadata) bool {
		return m.Description == ""
	}},
	{10, "Description under 20 characters", func(m *Metadata) bool {
		return len(m.Description) < 20
	}},
	{5, "Description under 50 characters", func(m *Metadata) bool {
		return len(m.Description) < 50
	}},
	{10, "No token image", func(m *Metadata) bool {
		return m.ImageURL == ""
	}},
	{5, "No banner image", func(m *Metadata) bool {
		return m.BannerURL == ""
	}},
	{10, "Missing name", func(m *Metadata) bool {
		return m.Name == ""
	}},
	{5, "Name under 3 characters", func(m *Metadata) bool {
		return m.Name != "" && len(m.Name) < 3
	}},
	{10, "Missing symbol", func(m *Metadata) bool {
		return m.Symbol == ""
	}},
	{5, "Symbol under 2 characters", func(m *Metadata) bool {
		return m.Symbol != "" && len(m.Symbol) < 2
	}},
	{10, "Name or symbol contains a low-effort pattern", func(m *Metadata) bool {
		combined := strings.ToLower(m.Name + m.Symbol)
		for _, s := range lowEffortSubstrings {
			if strings.Contains(combined, s) {
				return true
			}
		}
		return false
	}},
	{10, "Total supply above 1 trillion", func(m *Metadata) bool {
		return m.TotalSupply > 1e12
	}},
	{5, "No initial buy from the creator", func(m *Metadata) bool {
		return m.InitialBuy <= 0
	}},
}

// socialCount returns how many of website/twitter/telegram are present.
func (m *Metadata) socialCount() int {
	n := 0
	for _, link := range []string{m.Website, m.Twitter, m.Telegram} {
		if link != "" {
			n++
		}
	}
	return n
}

// Score evaluates all rules and returns the summed score capped at MaxScore.
func Score(m *Metadata) int {
	total := 0
	for _, r := range rules {
		if r.check(m) {
			total += r.points
		}
	}
	if total > MaxScore {
		total = MaxScore
	}
	return total
}

// Assessment is the summary view of a scored token.
type Assessment struct {
	Score          int    `json:"score"`
	Level          Level  `json:"level"`
	Color          string `json:"color"`
	Recommendation string `json:"recommendation"`
}

// Assess scores the metadata and annotates the result with its level.
func Assess(m *Metadata) Assessment {
	score := Score(m)
	level := LevelFor(score)
	return Assessment{
		Score:          score,
		Level:          level,
		Color:          level.Color(),
		Recommendation: level.Recommendation(),
	}
}

// Analysis is the detailed reporting view over the same rule checks.
type Analysis struct {
	Assessment
	Issues    []string `json:"issues"`
	Positives []string `json:"positives"`
}

// DetailedAnalysis returns per-rule issues plus positive signals. It is a
// reporting view: no scoring logic beyond the shared rule table.
func DetailedAnalysis(m *Metadata) Analysis {
	a := Analysis{Assessment: Assess(m)}

	for _, r := range rules {
		if r.check(m) {
			a.Issues = append(a.Issues, r.issue)
		}
	}

	if len(m.Description) >= 50 {
		a.Positives = append(a.Positives, "Detailed description provided")
	}
	if m.socialCount() == 3 {
		a.Positives = append(a.Positives, "All social links present")
	}
	if m.ImageURL != "" && m.BannerURL != "" {
		a.Positives = append(a.Positives, "Token image and banner uploaded")
	}
	if m.InitialBuy > 0 {
		a.Positives = append(a.Positives, "Creator made an initial buy")
	}
	if m.TotalSupply > 0 && m.TotalSupply <= 1e12 {
		a.Positives = append(a.Positives, "Reasonable total supply")
	}

	return a
}
