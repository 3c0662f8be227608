package models

import "time"

type Strategy string

const (
	StrategyGrid      Strategy = "grid"
	StrategyDCA       Strategy = "dca"
	StrategyArbitrage Strategy = "arbitrage"
	StrategyTrend     Strategy = "trend"
	StrategyMomentum  Strategy = "momentum"
	StrategyRebalance Strategy = "rebalance"
	StrategyYield     Strategy = "yield"
)

// Strategies lists every recognized strategy tag.
var Strategies = []Strategy{
	StrategyGrid, StrategyDCA, StrategyArbitrage, StrategyTrend,
	StrategyMomentum, StrategyRebalance, StrategyYield,
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPaused   Status = "paused"
	StatusError    Status = "error"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Bot is one locally managed trading bot preset plus its simulated
// performance counters. The whole collection is serialized as a single
// JSON blob in the key-value store.
type Bot struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	Strategy             Strategy    `json:"strategy"`
	Status               Status      `json:"status"`
	Allocation           float64     `json:"allocation"`
	RiskLevel            RiskLevel   `json:"riskLevel"`
	TargetAssets         []string    `json:"targetAssets"`
	ProfitLoss           float64     `json:"profitLoss"`
	ProfitLossPercentage float64     `json:"profitLossPercentage"`
	TotalTrades          int         `json:"totalTrades"`
	WinRate              float64     `json:"winRate"`
	Performance24h       float64     `json:"performance24h"`
	MaxDrawdown          float64     `json:"maxDrawdown"`
	LastActive           time.Time   `json:"lastActive"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
	Config               BotConfig   `json:"config"`
	ExecutionHistory     []Execution `json:"executionHistory"`
}

// BotConfig holds the user-tunable knobs for a bot. Percent fields are
// expressed as plain percentages (5 means 5%).
type BotConfig struct {
	Allocation         float64  `json:"allocation"`
	MaxDrawdown        float64  `json:"maxDrawdown"`
	StopLoss           float64  `json:"stopLoss"`
	TakeProfit         float64  `json:"takeProfit"`
	Interval           string   `json:"interval"` // "5m", "15m", "1h", "4h", "1d"
	TargetCategories   []string `json:"targetCategories"`
	RebalanceThreshold float64  `json:"rebalanceThreshold"`
	MaxPositionSize    float64  `json:"maxPositionSize"`
}

// Allocation is one {category, percentage} target weight sent to the
// on-chain vault. Name and Color are display metadata the dashboard
// renders verbatim.
type Allocation struct {
	Category   string  `json:"category"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Percentage float64 `json:"percentage"`
}
