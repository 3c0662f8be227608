package ethereum

import (
	"io"
	"strings"
)

// Minimal vault ABI, only the methods we call.

func mustVaultABI() io.Reader {
	return strings.NewReader(`[
		{
			"name": "setAllocations",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [
				{"name": "categories", "type": "bytes32[]"},
				{"name": "weightsBps", "type": "uint16[]"}
			],
			"outputs": []
		},
		{
			"name": "paused",
			"type": "function",
			"stateMutability": "view",
			"inputs": [],
			"outputs": [{"name": "", "type": "bool"}]
		}
	]`)
}
