package ledger

import (
	"time"

	"github.com/vaultfolio/ledger-backend/internal/models"
)

var seedTime = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

// seedBots is the built-in collection returned when storage is empty or
// unreadable, so the dashboard always has something to show. Values are
// fixed; profitLossPercentage is kept consistent with the
// pnl/allocation invariant.
func seedBots() []models.Bot {
	return []models.Bot{
		{
			ID:                   "seed-bot-grid",
			Name:                 "Blue Chip Grid",
			Strategy:             models.StrategyGrid,
			Status:               models.StatusActive,
			Allocation:           5000,
			RiskLevel:            models.RiskMedium,
			TargetAssets:         []string{"BTC", "ETH", "SOL"},
			ProfitLoss:           420.50,
			ProfitLossPercentage: 8.41,
			TotalTrades:          42,
			WinRate:              71.4,
			Performance24h:       2.3,
			MaxDrawdown:          12.5,
			LastActive:           seedTime,
			CreatedAt:            seedTime.AddDate(0, -3, 0),
			UpdatedAt:            seedTime,
			Config: models.BotConfig{
				Allocation:         5000,
				MaxDrawdown:        20,
				StopLoss:           5,
				TakeProfit:         10,
				Interval:           "1h",
				TargetCategories:   []string{"bigcap", "defi", "l1"},
				RebalanceThreshold: 5,
				MaxPositionSize:    1250,
			},
		},
		{
			ID:                   "seed-bot-yield",
			Name:                 "Stable Yield Farmer",
			Strategy:             models.StrategyYield,
			Status:               models.StatusActive,
			Allocation:           2500,
			RiskLevel:            models.RiskLow,
			TargetAssets:         []string{"USDC", "DAI"},
			ProfitLoss:           96.25,
			ProfitLossPercentage: 3.85,
			TotalTrades:          18,
			WinRate:              88.9,
			Performance24h:       0.4,
			MaxDrawdown:          3.2,
			LastActive:           seedTime,
			CreatedAt:            seedTime.AddDate(0, -2, 0),
			UpdatedAt:            seedTime,
			Config: models.BotConfig{
				Allocation:         2500,
				MaxDrawdown:        10,
				StopLoss:           2,
				TakeProfit:         4,
				Interval:           "1d",
				TargetCategories:   []string{"defi", "stablecoin"},
				RebalanceThreshold: 3,
				MaxPositionSize:    625,
			},
		},
		{
			ID:                   "seed-bot-momentum",
			Name:                 "AI Momentum",
			Strategy:             models.StrategyMomentum,
			Status:               models.StatusPaused,
			Allocation:           1000,
			RiskLevel:            models.RiskHigh,
			TargetAssets:         []string{"FET", "RNDR", "TAO"},
			ProfitLoss:           -57.50,
			ProfitLossPercentage: -5.75,
			TotalTrades:          27,
			WinRate:              44.4,
			Performance24h:       -1.8,
			MaxDrawdown:          28.0,
			LastActive:           seedTime,
			CreatedAt:            seedTime.AddDate(0, -1, 0),
			UpdatedAt:            seedTime,
			Config: models.BotConfig{
				Allocation:         1000,
				MaxDrawdown:        35,
				StopLoss:           10,
				TakeProfit:         25,
				Interval:           "15m",
				TargetCategories:   []string{"ai", "bigcap"},
				RebalanceThreshold: 8,
				MaxPositionSize:    250,
			},
		},
	}
}
