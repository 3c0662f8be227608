package ethereum

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vaultfolio/ledger-backend/internal/models"
)

// Simulator is the paper-mode stand-in for the vault: it accepts any
// allocation set and fabricates a transaction reference. No RPC needed.
type Simulator struct{}

func NewSimulator() *Simulator { return &Simulator{} }

func (s *Simulator) UpdateAllocations(ctx context.Context, allocations []models.Allocation) (string, error) {
	var total float64
	for _, a := range allocations {
		total += a.Percentage
	}
	if total != 100 {
		return "", fmt.Errorf("allocation weights sum to %.2f, want 100", total)
	}
	return "sim-" + uuid.NewString(), nil
}
