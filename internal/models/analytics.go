package models

import "time"

// Analytics is the read-side aggregation the dashboard renders. It is
// always recomputed from the bot collection and execution log, never
// loaded from storage.
type Analytics struct {
	TotalProfitLoss float64    `json:"totalProfitLoss"`
	TotalAllocation float64    `json:"totalAllocation"`
	ActiveBots      int        `json:"activeBots"`
	AverageWinRate  float64    `json:"averageWinRate"`
	TotalTrades     int        `json:"totalTrades"`
	BestPerformer   *Bot       `json:"bestPerformer"`
	WorstPerformer  *Bot       `json:"worstPerformer"`
	DailyPnL        []DailyPnL `json:"dailyPnL"`
}

// DailyPnL is one point of the trailing 30-day profit series.
// Date is an ISO calendar date (UTC).
type DailyPnL struct {
	Date string  `json:"date"`
	PnL  float64 `json:"pnl"`
}

// StrategyStats is the advisory per-strategy rollup cached in storage.
// It can be rebuilt from the bot collection at any time and is never
// read back as a source of truth.
type StrategyStats struct {
	Bots            int       `json:"bots"`
	TotalProfitLoss float64   `json:"totalProfitLoss"`
	TotalAllocation float64   `json:"totalAllocation"`
	AverageWinRate  float64   `json:"averageWinRate"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
