package risk

import (
	"strings"
	"testing"
)

// wellFormed returns metadata with every field populated well.
func wellFormed() *Metadata {
	return &Metadata{
		Name:           "Orbital Cat",
		Symbol:         "OCAT",
		Description:    strings.Repeat("A community token about a cat in orbit. ", 3),
		ImageURL:       "https://cdn.example.com/ocat.png",
		BannerURL:      "https://cdn.example.com/ocat-banner.png",
		Website:        "https://ocat.example.com",
		Twitter:        "https://twitter.com/ocat",
		Telegram:       "https://t.me/ocat",
		CreatorAddress: "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
		TotalSupply:    1_000_000_000,
		InitialBuy:     2.5,
	}
}

func TestScore_WellFormedToken(t *testing.T) {
	score := Score(wellFormed())

	if score >= 15 {
		t.Errorf("well-formed token scored %d, want < 15", score)
	}
	if level := LevelFor(score); level != LevelVeryLow {
		t.Errorf("well-formed token level = %s, want VERY_LOW", level)
	}
}

func TestScore_EmptyTokenClampsAt100(t *testing.T) {
	score := Score(&Metadata{})

	if score != 100 {
		t.Errorf("empty token scored %d, want 100 (clamped)", score)
	}
	if level := LevelFor(score); level != LevelExtreme {
		t.Errorf("empty token level = %s, want EXTREME", level)
	}
}

func TestScore_IndividualRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(m *Metadata)
		delta  int
	}{
		{"missing creator", func(m *Metadata) { m.CreatorAddress = "" }, 20},
		{"suspicious creator prefix", func(m *Metadata) { m.CreatorAddress = "dead7xKXtg2CW87d97TX" }, 10},
		{"no socials", func(m *Metadata) { m.Website, m.Twitter, m.Telegram = "", "", "" }, 15},
		{"one social", func(m *Metadata) { m.Twitter, m.Telegram = "", "" }, 10},
		{"two socials", func(m *Metadata) { m.Telegram = "" }, 5},
		{"short description", func(m *Metadata) { m.Description = "A cat token that is fine." }, 5},
		{"very short description", func(m *Metadata) { m.Description = "cat" }, 15},
		{"missing image", func(m *Metadata) { m.ImageURL = "" }, 10},
		{"missing banner", func(m *Metadata) { m.BannerURL = "" }, 5},
		{"short name", func(m *Metadata) { m.Name = "OC" }, 5},
		{"short symbol", func(m *Metadata) { m.Symbol = "O" }, 5},
		{"denylisted substring", func(m *Metadata) { m.Name = "Orbital Test Cat" }, 10},
		{"oversized supply", func(m *Metadata) { m.TotalSupply = 5e12 }, 10},
		{"no initial buy", func(m *Metadata) { m.InitialBuy = 0 }, 5},
	}

	base := Score(wellFormed())
	for _, c := range cases {
		m := wellFormed()
		c.mutate(m)
		got := Score(m)
		if got != base+c.delta {
			t.Errorf("%s: score = %d, want %d (base %d + %d)", c.name, got, base+c.delta, base, c.delta)
		}
	}
}

func TestScore_DenylistCaseInsensitive(t *testing.T) {
	m := wellFormed()
	m.Symbol = "XxX"

	if got, want := Score(m), Score(wellFormed())+10; got != want {
		t.Errorf("uppercase denylist match: score = %d, want %d", got, want)
	}
}

func TestLevelFor_Boundaries(t *testing.T) {
	cases := []struct {
		score int
		want  Level
	}{
		{0, LevelVeryLow},
		{14, LevelVeryLow},
		{15, LevelLow},
		{29, LevelLow},
		{30, LevelMedium},
		{49, LevelMedium},
		{50, LevelHigh},
		{69, LevelHigh},
		{70, LevelVeryHigh},
		{84, LevelVeryHigh},
		{85, LevelExtreme},
		{100, LevelExtreme},
	}

	for _, c := range cases {
		if got := LevelFor(c.score); got != c.want {
			t.Errorf("LevelFor(%d) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestLevelDisplayTable(t *testing.T) {
	for _, l := range []Level{LevelVeryLow, LevelLow, LevelMedium, LevelHigh, LevelVeryHigh, LevelExtreme} {
		if l.Color() == "" {
			t.Errorf("level %s has no color", l)
		}
		if l.Recommendation() == "" {
			t.Errorf("level %s has no recommendation", l)
		}
	}
}

func TestDetailedAnalysis(t *testing.T) {
	m := wellFormed()
	m.Telegram = ""
	m.BannerURL = ""

	a := DetailedAnalysis(m)

	if len(a.Issues) != 2 {
		t.Errorf("expected 2 issues, got %d: %v", len(a.Issues), a.Issues)
	}
	if a.Recommendation == "" {
		t.Error("analysis missing recommendation")
	}

	// Positives reflect the same field checks.
	found := false
	for _, p := range a.Positives {
		if p == "Detailed description provided" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected description positive, got %v", a.Positives)
	}
}

func TestDetailedAnalysis_EmptyTokenHasNoPositives(t *testing.T) {
	a := DetailedAnalysis(&Metadata{})

	if len(a.Positives) != 0 {
		t.Errorf("empty token positives = %v, want none", a.Positives)
	}
	if len(a.Issues) == 0 {
		t.Error("empty token should report issues")
	}
}
