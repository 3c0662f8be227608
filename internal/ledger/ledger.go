// Package ledger owns all bot and execution state for the portfolio
// dashboard: bot presets, simulated executions, and the derived
// analytics. State lives in a key-value store as JSON blobs; every
// mutation is a read-modify-write of the whole collection.
package ledger

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vaultfolio/ledger-backend/internal/models"
	"github.com/vaultfolio/ledger-backend/internal/store"
)

const (
	defaultKeyPrefix    = "vaultfolio"
	defaultLogCapacity  = 1000
	defaultHistoryLimit = 50
	defaultAllocation   = 1000
)

// AllocationUpdater abstracts the external on-chain allocation-update
// call so the ledger can be tested without a real chain.
type AllocationUpdater interface {
	UpdateAllocations(ctx context.Context, allocations []models.Allocation) (txRef string, err error)
}

// Options tunes a Ledger. The zero value gives production defaults.
type Options struct {
	KeyPrefix    string               // storage key namespace
	Now          func() time.Time     // clock, defaults to time.Now
	Rand         func() float64       // uniform [0,1), defaults to math/rand
	LogCapacity  int                  // global execution log cap
	HistoryLimit int                  // per-bot execution history cap
	Logger       zerolog.Logger
	OnExecution  func(models.Execution) // called after each recorded execution
}

type Ledger struct {
	store store.Store
	chain AllocationUpdater

	now          func() time.Time
	rnd          func() float64
	logCapacity  int
	historyLimit int
	onExecution  func(models.Execution)
	log          zerolog.Logger

	botsKey     string
	execKey     string
	strategyKey string

	// mu guards every read-modify-write of the stored collections.
	mu sync.Mutex

	// botLocks serializes Execute calls per bot so two concurrent
	// executions cannot interleave reads and writes of the same record.
	lockMu   sync.Mutex
	botLocks map[string]*sync.Mutex
}

func New(st store.Store, chain AllocationUpdater, opts Options) *Ledger {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = defaultKeyPrefix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	if opts.LogCapacity <= 0 {
		opts.LogCapacity = defaultLogCapacity
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistoryLimit
	}

	return &Ledger{
		store:        st,
		chain:        chain,
		now:          opts.Now,
		rnd:          opts.Rand,
		logCapacity:  opts.LogCapacity,
		historyLimit: opts.HistoryLimit,
		onExecution:  opts.OnExecution,
		log:          opts.Logger.With().Str("component", "ledger").Logger(),
		botsKey:      opts.KeyPrefix + ":bots",
		execKey:      opts.KeyPrefix + ":executions",
		strategyKey:  opts.KeyPrefix + ":analytics:strategies",
		botLocks:     make(map[string]*sync.Mutex),
	}
}

// ListBots returns every bot in insertion order. An empty or unreadable
// store yields the built-in seed collection; parse failures are logged
// and never surfaced.
func (l *Ledger) ListBots(ctx context.Context) []models.Bot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadBots(ctx)
}

// loadBots reads the bot collection. Callers must hold l.mu.
func (l *Ledger) loadBots(ctx context.Context) []models.Bot {
	raw, err := l.store.Get(ctx, l.botsKey)
	if err != nil {
		if err != store.ErrKeyNotFound {
			l.log.Warn().Err(err).Msg("bot collection unreadable, serving seed bots")
		}
		return seedBots()
	}

	var bots []models.Bot
	if err := json.Unmarshal([]byte(raw), &bots); err != nil {
		l.log.Warn().Err(err).Msg("bot collection corrupt, serving seed bots")
		return seedBots()
	}
	return bots
}

// saveBots persists the whole collection. Store errors are logged and
// collapsed into ErrSaveFailed. Callers must hold l.mu.
func (l *Ledger) saveBots(ctx context.Context, bots []models.Bot) error {
	data, err := json.Marshal(bots)
	if err != nil {
		l.log.Error().Err(err).Msg("marshal bot collection")
		return ErrSaveFailed
	}
	if err := l.store.Set(ctx, l.botsKey, string(data)); err != nil {
		l.log.Error().Err(err).Msg("persist bot collection")
		return ErrSaveFailed
	}
	return nil
}

// SaveBot upserts a bot by id and persists the collection. UpdatedAt is
// always stamped with the current time.
func (l *Ledger) SaveBot(ctx context.Context, bot models.Bot) (models.Bot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bot.UpdatedAt = l.now()

	bots := l.loadBots(ctx)
	replaced := false
	for i := range bots {
		if bots[i].ID == bot.ID {
			bots[i] = bot
			replaced = true
			break
		}
	}
	if !replaced {
		bots = append(bots, bot)
	}

	if err := l.saveBots(ctx, bots); err != nil {
		return models.Bot{}, err
	}
	return bot, nil
}

// DeleteBot removes a bot by id. A missing id is a no-op, not an error.
// Executions referencing the bot are intentionally left in the log.
func (l *Ledger) DeleteBot(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	bots := l.loadBots(ctx)
	kept := bots[:0]
	for _, b := range bots {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	return l.saveBots(ctx, kept)
}

// ToggleStatus flips a bot between active and paused. Bots in any other
// status keep it; lastActive and updatedAt are refreshed either way.
func (l *Ledger) ToggleStatus(ctx context.Context, id string) (*models.Bot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bots := l.loadBots(ctx)
	for i := range bots {
		if bots[i].ID != id {
			continue
		}
		switch bots[i].Status {
		case models.StatusActive:
			bots[i].Status = models.StatusPaused
		case models.StatusPaused:
			bots[i].Status = models.StatusActive
		}
		ts := l.now()
		bots[i].LastActive = ts
		bots[i].UpdatedAt = ts

		if err := l.saveBots(ctx, bots); err != nil {
			return nil, err
		}
		b := bots[i]
		return &b, nil
	}
	return nil, ErrNotFound
}

// CreateBotParams is the partial input for CreateBot. Zero-valued
// fields are filled with defaults.
type CreateBotParams struct {
	Name         string            `json:"name"`
	Strategy     models.Strategy   `json:"strategy"`
	Allocation   float64           `json:"allocation"`
	RiskLevel    models.RiskLevel  `json:"riskLevel"`
	TargetAssets []string          `json:"targetAssets"`
	Config       *models.BotConfig `json:"config"`
}

// CreateBot builds a full bot from a partial input, assigns a fresh id
// and timestamps, persists it, and returns it. New bots start inactive
// with zeroed performance counters.
func (l *Ledger) CreateBot(ctx context.Context, p CreateBotParams) (*models.Bot, error) {
	if p.Name == "" {
		p.Name = "Unnamed Bot"
	}
	if p.Strategy == "" {
		p.Strategy = models.StrategyGrid
	}
	if p.Allocation <= 0 {
		p.Allocation = defaultAllocation
	}
	if p.RiskLevel == "" {
		p.RiskLevel = models.RiskMedium
	}
	if len(p.TargetAssets) == 0 {
		p.TargetAssets = []string{"BTC", "ETH"}
	}

	cfg := defaultConfig(p.Strategy, p.Allocation)
	if p.Config != nil {
		cfg = *p.Config
		if cfg.Allocation <= 0 {
			cfg.Allocation = p.Allocation
		}
		if cfg.Interval == "" {
			cfg.Interval = "1h"
		}
	}

	ts := l.now()
	bot := models.Bot{
		ID:           uuid.NewString(),
		Name:         p.Name,
		Strategy:     p.Strategy,
		Status:       models.StatusInactive,
		Allocation:   p.Allocation,
		RiskLevel:    p.RiskLevel,
		TargetAssets: p.TargetAssets,
		LastActive:   ts,
		CreatedAt:    ts,
		UpdatedAt:    ts,
		Config:       cfg,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bots := append(l.loadBots(ctx), bot)
	if err := l.saveBots(ctx, bots); err != nil {
		return nil, err
	}

	l.log.Info().Str("bot", bot.ID).Str("strategy", string(bot.Strategy)).Msg("bot created")
	return &bot, nil
}

func defaultConfig(s models.Strategy, allocation float64) models.BotConfig {
	cats := make([]string, 0, 4)
	for _, a := range AllocationsFor(s) {
		cats = append(cats, a.Category)
	}
	return models.BotConfig{
		Allocation:         allocation,
		MaxDrawdown:        15,
		StopLoss:           5,
		TakeProfit:         10,
		Interval:           "1h",
		TargetCategories:   cats,
		RebalanceThreshold: 5,
		MaxPositionSize:    allocation * 0.25,
	}
}

// Execute runs one allocation update for a bot: it derives the target
// allocation set from the strategy table, delegates to the external
// chain call, records the execution, and on success applies the
// performance update. Failed chain calls are recorded in the log before
// the error is returned; the bot's counters are not touched.
func (l *Ledger) Execute(ctx context.Context, botID string) (*models.Execution, error) {
	lock := l.botLock(botID)
	lock.Lock()
	defer lock.Unlock()

	l.mu.Lock()
	bots := l.loadBots(ctx)
	idx := -1
	for i := range bots {
		if bots[i].ID == botID {
			idx = i
			break
		}
	}
	if idx == -1 {
		l.mu.Unlock()
		return nil, ErrNotFound
	}
	if bots[idx].Status != models.StatusActive {
		l.mu.Unlock()
		return nil, ErrNotActive
	}
	bot := bots[idx]
	l.mu.Unlock()

	allocations := AllocationsFor(bot.Strategy)

	// The one suspension point: the chain call runs outside the ledger
	// lock. The per-bot lock keeps a second Execute for the same bot
	// from interleaving with this one.
	txRef, chainErr := l.chain.UpdateAllocations(ctx, allocations)

	exec := models.Execution{
		ID:        uuid.NewString(),
		BotID:     bot.ID,
		Timestamp: l.now(),
		Type:      models.ExecutionRebalance,
		Amount:    bot.Allocation,
	}

	if chainErr != nil {
		msg := chainErr.Error()
		exec.Error = &msg
		l.appendExecution(ctx, exec)
		l.log.Warn().Str("bot", bot.ID).Str("error", msg).Msg("execution failed")
		return nil, &ExecutionError{BotID: bot.ID, Message: msg, Err: chainErr}
	}

	exec.Success = true
	exec.TxRef = &txRef
	exec.Profit = l.rnd()*100 - 50 // uniform [-50, +50)

	l.mu.Lock()
	bots = l.loadBots(ctx)
	for i := range bots {
		if bots[i].ID != bot.ID {
			continue
		}
		l.applyPerformance(&bots[i], exec)
		if err := l.saveBots(ctx, bots); err != nil {
			l.mu.Unlock()
			return nil, err
		}
		l.writeStrategyCache(ctx, bots)
		break
	}
	l.mu.Unlock()

	l.appendExecution(ctx, exec)
	l.log.Info().
		Str("bot", bot.ID).
		Str("tx", txRef).
		Float64("profit", exec.Profit).
		Msg("execution recorded")
	return &exec, nil
}

// applyPerformance folds one recorded execution into a bot's counters.
// The winRate running average handles the failure case even though the
// current flow only ever feeds it successes.
func (l *Ledger) applyPerformance(bot *models.Bot, exec models.Execution) {
	bot.TotalTrades++
	bot.ProfitLoss += exec.Profit
	if bot.Allocation > 0 {
		bot.ProfitLossPercentage = bot.ProfitLoss / bot.Allocation * 100
	}

	outcome := 0.0
	if exec.Success {
		outcome = 100
	}
	bot.WinRate = (bot.WinRate*float64(bot.TotalTrades-1) + outcome) / float64(bot.TotalTrades)

	bot.Performance24h = l.rnd()*10 - 5 // replaced, not accumulated
	ts := l.now()
	bot.LastActive = ts
	bot.UpdatedAt = ts

	bot.ExecutionHistory = append(bot.ExecutionHistory, exec)
	if len(bot.ExecutionHistory) > l.historyLimit {
		bot.ExecutionHistory = bot.ExecutionHistory[len(bot.ExecutionHistory)-l.historyLimit:]
	}
}

// Executions returns the most recent executions, newest first.
// limit <= 0 means all retained entries.
func (l *Ledger) Executions(ctx context.Context, limit int) []models.Execution {
	l.mu.Lock()
	entries := l.loadLog(ctx).Entries()
	l.mu.Unlock()

	// reverse to newest-first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// loadLog reads the global execution log. Callers must hold l.mu.
func (l *Ledger) loadLog(ctx context.Context) *ExecutionLog {
	logbuf := NewExecutionLog(l.logCapacity)

	raw, err := l.store.Get(ctx, l.execKey)
	if err != nil {
		if err != store.ErrKeyNotFound {
			l.log.Warn().Err(err).Msg("execution log unreadable, starting empty")
		}
		return logbuf
	}

	var entries []models.Execution
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		l.log.Warn().Err(err).Msg("execution log corrupt, starting empty")
		return logbuf
	}
	logbuf.Restore(entries)
	return logbuf
}

func (l *Ledger) appendExecution(ctx context.Context, exec models.Execution) {
	l.mu.Lock()
	logbuf := l.loadLog(ctx)
	logbuf.Append(exec)

	data, err := json.Marshal(logbuf.Entries())
	if err != nil {
		l.log.Error().Err(err).Msg("marshal execution log")
	} else if err := l.store.Set(ctx, l.execKey, string(data)); err != nil {
		l.log.Error().Err(err).Msg("persist execution log")
	}
	l.mu.Unlock()

	if l.onExecution != nil {
		l.onExecution(exec)
	}
}

// writeStrategyCache refreshes the advisory per-strategy rollup. It is
// denormalized convenience data only; write failures are logged and
// otherwise ignored. Callers must hold l.mu.
func (l *Ledger) writeStrategyCache(ctx context.Context, bots []models.Bot) {
	stats := make(map[models.Strategy]models.StrategyStats)
	ts := l.now()
	for _, b := range bots {
		s := stats[b.Strategy]
		s.Bots++
		s.TotalProfitLoss += b.ProfitLoss
		s.TotalAllocation += b.Allocation
		s.AverageWinRate += b.WinRate
		s.UpdatedAt = ts
		stats[b.Strategy] = s
	}
	for k, s := range stats {
		s.AverageWinRate /= float64(s.Bots)
		stats[k] = s
	}

	data, err := json.Marshal(stats)
	if err != nil {
		l.log.Error().Err(err).Msg("marshal strategy cache")
		return
	}
	if err := l.store.Set(ctx, l.strategyKey, string(data)); err != nil {
		l.log.Warn().Err(err).Msg("persist strategy cache")
	}
}

func (l *Ledger) botLock(id string) *sync.Mutex {
	l.lockMu.Lock()
	defer l.lockMu.Unlock()
	m, ok := l.botLocks[id]
	if !ok {
		m = &sync.Mutex{}
		l.botLocks[id] = m
	}
	return m
}
