package ledger_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/vaultfolio/ledger-backend/internal/ledger"
	"github.com/vaultfolio/ledger-backend/internal/models"
)

func TestGetAnalytics_Aggregates(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	ctx := context.Background()

	// Start from a clean slate so the numbers are exact.
	for _, id := range []string{"seed-bot-grid", "seed-bot-yield", "seed-bot-momentum"} {
		if err := f.ledger.DeleteBot(ctx, id); err != nil {
			t.Fatalf("delete seed %s: %v", id, err)
		}
	}

	save := func(b models.Bot) {
		t.Helper()
		if _, err := f.ledger.SaveBot(ctx, b); err != nil {
			t.Fatalf("SaveBot %s: %v", b.ID, err)
		}
	}
	save(models.Bot{
		ID: "a", Name: "Winner", Status: models.StatusActive,
		Allocation: 5000, ProfitLoss: 500, ProfitLossPercentage: 10,
		TotalTrades: 20, WinRate: 80,
	})
	save(models.Bot{
		ID: "b", Name: "Loser", Status: models.StatusActive,
		Allocation: 2000, ProfitLoss: -400, ProfitLossPercentage: -20,
		TotalTrades: 10, WinRate: 40,
	})
	save(models.Bot{
		ID: "c", Name: "Idle", Status: models.StatusInactive,
		Allocation: 1000, ProfitLoss: 0, ProfitLossPercentage: 0,
		TotalTrades: 0, WinRate: 0,
	})

	a := f.ledger.GetAnalytics(ctx)

	if !approx(a.TotalProfitLoss, 100) {
		t.Fatalf("totalProfitLoss: got %f", a.TotalProfitLoss)
	}
	if !approx(a.TotalAllocation, 8000) {
		t.Fatalf("totalAllocation: got %f", a.TotalAllocation)
	}
	if a.ActiveBots != 2 {
		t.Fatalf("activeBots: got %d", a.ActiveBots)
	}
	if a.TotalTrades != 30 {
		t.Fatalf("totalTrades: got %d", a.TotalTrades)
	}
	if !approx(a.AverageWinRate, 40) { // (80+40+0)/3
		t.Fatalf("averageWinRate: got %f", a.AverageWinRate)
	}
	if a.BestPerformer == nil || a.BestPerformer.ID != "a" {
		t.Fatalf("bestPerformer: %+v", a.BestPerformer)
	}
	if a.WorstPerformer == nil || a.WorstPerformer.ID != "b" {
		t.Fatalf("worstPerformer: %+v", a.WorstPerformer)
	}
}

func TestGetAnalytics_EmptyCollection(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	ctx := context.Background()

	for _, id := range []string{"seed-bot-grid", "seed-bot-yield", "seed-bot-momentum"} {
		if err := f.ledger.DeleteBot(ctx, id); err != nil {
			t.Fatalf("delete seed %s: %v", id, err)
		}
	}

	a := f.ledger.GetAnalytics(ctx)
	if a.BestPerformer != nil || a.WorstPerformer != nil {
		t.Fatal("performers must be nil with no bots")
	}
	if a.AverageWinRate != 0 || a.TotalTrades != 0 || a.ActiveBots != 0 {
		t.Fatalf("expected zeroed aggregates: %+v", a)
	}
	if len(a.DailyPnL) != 30 {
		t.Fatalf("daily series is always 30 entries, got %d", len(a.DailyPnL))
	}
}

func TestGetAnalytics_DailySeries(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	ctx := context.Background()

	bot := activeBot(t, f, ledger.CreateBotParams{Name: "Series"})

	// One execution today, one 3 days ago, one 40 days ago (outside the
	// window). Fixed rand means each successful run profits 25.
	f.clock.Set(testStart.AddDate(0, 0, -40))
	if _, err := f.ledger.Execute(ctx, bot.ID); err != nil {
		t.Fatalf("Execute (old): %v", err)
	}
	f.clock.Set(testStart.AddDate(0, 0, -3))
	if _, err := f.ledger.Execute(ctx, bot.ID); err != nil {
		t.Fatalf("Execute (-3d): %v", err)
	}
	f.clock.Set(testStart)
	if _, err := f.ledger.Execute(ctx, bot.ID); err != nil {
		t.Fatalf("Execute (today): %v", err)
	}

	a := f.ledger.GetAnalytics(ctx)
	series := a.DailyPnL
	if len(series) != 30 {
		t.Fatalf("expected 30 entries, got %d", len(series))
	}

	today := testStart.UTC().Format("2006-01-02")
	if series[29].Date != today {
		t.Fatalf("last entry should be today %s, got %s", today, series[29].Date)
	}
	if series[0].Date != testStart.UTC().AddDate(0, 0, -29).Format("2006-01-02") {
		t.Fatalf("first entry date: %s", series[0].Date)
	}
	for i := 1; i < len(series); i++ {
		if series[i].Date <= series[i-1].Date {
			t.Fatal("dates must be strictly ascending")
		}
	}

	if !approx(series[29].PnL, 25) {
		t.Fatalf("today's pnl: got %f", series[29].PnL)
	}
	if !approx(series[26].PnL, 25) {
		t.Fatalf("pnl 3 days ago: got %f", series[26].PnL)
	}

	var total float64
	for _, d := range series {
		total += d.PnL
	}
	if !approx(total, 50) { // 40-day-old execution excluded
		t.Fatalf("windowed total: got %f", total)
	}
}

func TestExecute_RefreshesStrategyCache(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	ctx := context.Background()

	bot := activeBot(t, f, ledger.CreateBotParams{Name: "Cached", Strategy: models.StrategyDCA})
	if _, err := f.ledger.Execute(ctx, bot.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	raw, err := f.store.Get(ctx, "vaultfolio:analytics:strategies")
	if err != nil {
		t.Fatalf("strategy cache missing: %v", err)
	}
	var stats map[string]models.StrategyStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		t.Fatalf("strategy cache unreadable: %v", err)
	}

	dca, ok := stats["dca"]
	if !ok {
		t.Fatalf("expected dca entry, got %v", stats)
	}
	if dca.Bots != 1 {
		t.Fatalf("dca bot count: got %d", dca.Bots)
	}
	if !approx(dca.TotalProfitLoss, 25) {
		t.Fatalf("dca pnl: got %f", dca.TotalProfitLoss)
	}
	if dca.UpdatedAt.IsZero() {
		t.Fatal("cache entries carry an update timestamp")
	}

	// Seeds contribute their strategies too.
	if _, ok := stats["grid"]; !ok {
		t.Fatal("expected grid entry from the seed set")
	}
}

// Clock sanity for the series boundary: an execution at 23:59 UTC lands
// in its own calendar day, not the next one.
func TestDailySeries_UTCBoundary(t *testing.T) {
	f := newFixture(t, ledger.Options{})
	ctx := context.Background()

	bot := activeBot(t, f, ledger.CreateBotParams{Name: "Boundary"})

	lateYesterday := time.Date(2025, time.July, 31, 23, 59, 0, 0, time.UTC)
	f.clock.Set(lateYesterday)
	if _, err := f.ledger.Execute(ctx, bot.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	f.clock.Set(testStart)

	series := f.ledger.GetAnalytics(ctx).DailyPnL
	if !approx(series[28].PnL, 25) {
		t.Fatalf("profit should bucket on 2025-07-31, got %f there", series[28].PnL)
	}
	if !approx(series[29].PnL, 0) {
		t.Fatalf("today should be empty, got %f", series[29].PnL)
	}
}
