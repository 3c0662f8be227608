package ledger

import "github.com/vaultfolio/ledger-backend/internal/models"

// categoryMeta maps a category id to the display name and color the
// dashboard renders. The vault contract only consumes the id and
// percentage; name and color ride along for the UI.
var categoryMeta = map[string]struct {
	Name  string
	Color string
}{
	"bigcap":     {"Big Caps", "#F7931A"},
	"defi":       {"DeFi", "#8A2BE2"},
	"l1":         {"Layer 1", "#627EEA"},
	"ai":         {"AI", "#00D1B2"},
	"stablecoin": {"Stablecoins", "#26A17B"},
}

type weight struct {
	category string
	pct      float64
}

// strategyWeights is the fixed strategy-to-allocation table. Every row
// sums to 100. Tags without an entry fall back to defaultWeights.
var strategyWeights = map[models.Strategy][]weight{
	models.StrategyGrid: {
		{"bigcap", 40}, {"defi", 30}, {"l1", 30},
	},
	models.StrategyDCA: {
		{"ai", 50}, {"bigcap", 50},
	},
	models.StrategyYield: {
		{"defi", 60}, {"stablecoin", 40},
	},
}

var defaultWeights = []weight{
	{"bigcap", 30}, {"ai", 25}, {"defi", 25}, {"l1", 20},
}

// AllocationsFor returns the target allocation set for a strategy tag.
// Unknown tags get the default split.
func AllocationsFor(s models.Strategy) []models.Allocation {
	weights, ok := strategyWeights[s]
	if !ok {
		weights = defaultWeights
	}

	out := make([]models.Allocation, len(weights))
	for i, w := range weights {
		meta := categoryMeta[w.category]
		out[i] = models.Allocation{
			Category:   w.category,
			Name:       meta.Name,
			Color:      meta.Color,
			Percentage: w.pct,
		}
	}
	return out
}
