package models

import "time"

type ExecutionType string

const (
	ExecutionBuy       ExecutionType = "buy"
	ExecutionSell      ExecutionType = "sell"
	ExecutionRebalance ExecutionType = "rebalance"
)

// Execution is a single allocation-update attempt tied to one bot.
// Executions are immutable once recorded; failed attempts are kept with
// Success=false and the upstream error message.
type Execution struct {
	ID        string        `json:"id"`
	BotID     string        `json:"botId"`
	Timestamp time.Time     `json:"timestamp"`
	Type      ExecutionType `json:"type"`
	Amount    float64       `json:"amount"`
	Price     float64       `json:"price"`
	Profit    float64       `json:"profit"`
	Success   bool          `json:"success"`
	TxRef     *string       `json:"txRef,omitempty"`
	Error     *string       `json:"error,omitempty"`
}
