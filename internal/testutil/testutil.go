// Package testutil provides shared fakes for ledger tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vaultfolio/ledger-backend/internal/models"
)

// Clock is a settable fake clock.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{t: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// StubUpdater is an AllocationUpdater double that records every call.
type StubUpdater struct {
	TxRef string
	Err   error

	mu    sync.Mutex
	Calls [][]models.Allocation
}

func (u *StubUpdater) UpdateAllocations(ctx context.Context, allocations []models.Allocation) (string, error) {
	u.mu.Lock()
	u.Calls = append(u.Calls, allocations)
	u.mu.Unlock()
	if u.Err != nil {
		return "", u.Err
	}
	if u.TxRef == "" {
		return "0xdeadbeef", nil
	}
	return u.TxRef, nil
}

func (u *StubUpdater) CallCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.Calls)
}

func (u *StubUpdater) LastCall() []models.Allocation {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.Calls) == 0 {
		return nil
	}
	return u.Calls[len(u.Calls)-1]
}
