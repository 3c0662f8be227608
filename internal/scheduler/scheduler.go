// Package scheduler periodically executes active bots whose configured
// interval has elapsed.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaultfolio/ledger-backend/internal/ledger"
	"github.com/vaultfolio/ledger-backend/internal/models"
)

type Config struct {
	TickInterval   time.Duration // how often due bots are checked
	ExecuteTimeout time.Duration // per-execution deadline
	Logger         zerolog.Logger
}

type AutoExecutor struct {
	ledger *ledger.Ledger
	cfg    Config
	log    zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewAutoExecutor(l *ledger.Ledger, cfg Config) *AutoExecutor {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 1 * time.Minute
	}
	if cfg.ExecuteTimeout <= 0 {
		cfg.ExecuteTimeout = 90 * time.Second
	}
	return &AutoExecutor{
		ledger: l,
		cfg:    cfg,
		log:    cfg.Logger.With().Str("component", "scheduler").Logger(),
	}
}

func (a *AutoExecutor) Start() {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		a.log.Info().Msg("already running")
		return
	}
	a.running = true
	a.stopCh = make(chan struct{})
	a.mu.Unlock()

	go func() {
		ticker := time.NewTicker(a.cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-a.stopCh:
				return
			case <-ticker.C:
				a.tick()
			}
		}
	}()

	a.log.Info().Dur("tick", a.cfg.TickInterval).Msg("auto-executor started")
}

func (a *AutoExecutor) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return
	}
	close(a.stopCh)
	a.running = false
	a.log.Info().Msg("auto-executor stopped")
}

func (a *AutoExecutor) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

func (a *AutoExecutor) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ExecuteTimeout)
	defer cancel()

	bots := a.ledger.ListBots(ctx)
	for _, id := range DueBots(bots, time.Now()) {
		if _, err := a.ledger.Execute(ctx, id); err != nil {
			// NotActive can happen when a bot was paused between the
			// due check and the execute.
			if errors.Is(err, ledger.ErrNotActive) || errors.Is(err, ledger.ErrNotFound) {
				continue
			}
			a.log.Warn().Str("bot", id).Err(err).Msg("scheduled execution failed")
		}
	}
}

// DueBots returns the ids of active bots whose configured interval has
// elapsed since they were last active.
func DueBots(bots []models.Bot, now time.Time) []string {
	var due []string
	for _, b := range bots {
		if b.Status != models.StatusActive {
			continue
		}
		if now.Sub(b.LastActive) >= IntervalDuration(b.Config.Interval) {
			due = append(due, b.ID)
		}
	}
	return due
}

// IntervalDuration maps a bot's interval tag to a duration. Unknown
// tags default to one hour.
func IntervalDuration(tag string) time.Duration {
	switch tag {
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "1h":
		return time.Hour
	case "4h":
		return 4 * time.Hour
	case "1d":
		return 24 * time.Hour
	default:
		return time.Hour
	}
}
