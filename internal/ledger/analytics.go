package ledger

import (
	"context"
	"time"

	"github.com/vaultfolio/ledger-backend/internal/models"
)

const dailySeriesDays = 30

// GetAnalytics aggregates the current bots and execution log into the
// dashboard's summary view. Pure derivation; nothing is persisted.
func (l *Ledger) GetAnalytics(ctx context.Context) models.Analytics {
	l.mu.Lock()
	bots := l.loadBots(ctx)
	executions := l.loadLog(ctx).Entries()
	l.mu.Unlock()

	a := models.Analytics{
		DailyPnL: dailySeries(executions, l.now()),
	}

	var bestIdx, worstIdx = -1, -1
	for i, b := range bots {
		a.TotalProfitLoss += b.ProfitLoss
		a.TotalAllocation += b.Allocation
		a.TotalTrades += b.TotalTrades
		a.AverageWinRate += b.WinRate
		if b.Status == models.StatusActive {
			a.ActiveBots++
		}
		if bestIdx == -1 || b.ProfitLossPercentage > bots[bestIdx].ProfitLossPercentage {
			bestIdx = i
		}
		if worstIdx == -1 || b.ProfitLossPercentage < bots[worstIdx].ProfitLossPercentage {
			worstIdx = i
		}
	}

	if len(bots) > 0 {
		a.AverageWinRate /= float64(len(bots))
		best, worst := bots[bestIdx], bots[worstIdx]
		a.BestPerformer = &best
		a.WorstPerformer = &worst
	}

	return a
}

// dailySeries buckets execution profits into the trailing 30 UTC
// calendar days, oldest first and inclusive of today. Days without
// executions contribute zero.
func dailySeries(executions []models.Execution, now time.Time) []models.DailyPnL {
	byDay := make(map[string]float64)
	for _, e := range executions {
		day := e.Timestamp.UTC().Format("2006-01-02")
		byDay[day] += e.Profit
	}

	today := now.UTC()
	out := make([]models.DailyPnL, 0, dailySeriesDays)
	for i := dailySeriesDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		out = append(out, models.DailyPnL{Date: day, PnL: byDay[day]})
	}
	return out
}
