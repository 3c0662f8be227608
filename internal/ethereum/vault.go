package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vaultfolio/ledger-backend/internal/models"
)

const explorerTxPrefix = "https://etherscan.io/tx/"

// Vault wraps the portfolio vault contract. The contract accepts a
// full set of target weights in basis points and rebalances the vault
// to match; the ledger treats the resulting tx hash as the execution's
// transaction reference.
type Vault struct {
	client    *Client
	vaultAddr common.Address
	vaultABI  abi.ABI
}

func NewVault(client *Client, vaultAddr string) (*Vault, error) {
	vABI, err := abi.JSON(mustVaultABI())
	if err != nil {
		return nil, fmt.Errorf("parse vault ABI: %w", err)
	}
	return &Vault{
		client:    client,
		vaultAddr: common.HexToAddress(vaultAddr),
		vaultABI:  vABI,
	}, nil
}

func (v *Vault) ExplorerURL(txHash string) string {
	return explorerTxPrefix + txHash
}

// Paused reads the vault's pause flag via eth_call.
func (v *Vault) Paused(ctx context.Context) (bool, error) {
	data, err := v.vaultABI.Pack("paused")
	if err != nil {
		return false, err
	}
	result, err := v.client.CallContract(ctx, v.vaultAddr, data)
	if err != nil {
		return false, fmt.Errorf("paused call: %w", err)
	}
	return new(big.Int).SetBytes(result).Sign() != 0, nil
}

// UpdateAllocations submits setAllocations with the given target
// weights and returns the tx hash. Percentages convert to basis points
// on the wire. Satisfies ledger.AllocationUpdater.
func (v *Vault) UpdateAllocations(ctx context.Context, allocations []models.Allocation) (string, error) {
	paused, err := v.Paused(ctx)
	if err != nil {
		return "", err
	}
	if paused {
		return "", fmt.Errorf("vault is paused")
	}

	categories := make([][32]byte, len(allocations))
	weightsBps := make([]uint16, len(allocations))
	for i, a := range allocations {
		copy(categories[i][:], a.Category)
		weightsBps[i] = uint16(a.Percentage * 100)
	}

	data, err := v.vaultABI.Pack("setAllocations", categories, weightsBps)
	if err != nil {
		return "", fmt.Errorf("pack setAllocations: %w", err)
	}

	return v.client.SignAndSend(ctx, v.vaultAddr, big.NewInt(0), data)
}
