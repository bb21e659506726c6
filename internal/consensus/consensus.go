// Package consensus implements the node's proof-of-work rule: searching
// for a nonce that makes a block's hash start with a given number of
// zero characters.
package consensus

import (
	"context"
	"strings"

	"github.com/noobcash/noobcash-go/internal/ledger"
)

// Mine repeatedly increments block's nonce until its hash satisfies
// difficulty, or ctx is cancelled (the node's mining loop passes its own
// context, which is cancelled at shutdown). Mine returns the zero block
// and false in that case.
//
// Mining runs lock-free on a caller-owned snapshot of the block: it
// never touches node state directly, so it never blocks the node's
// mutex while searching.
func Mine(ctx context.Context, block ledger.Block, difficulty int) (ledger.Block, bool) {
	target := strings.Repeat("0", difficulty)

	for {
		if block.Nonce%4096 == 0 {
			select {
			case <-ctx.Done():
				return ledger.Block{}, false
			default:
			}
		}

		hash, err := ledger.CalculateHash(block, false)
		if err != nil {
			return ledger.Block{}, false
		}
		if strings.HasPrefix(hash, target) {
			block.CurrentHash = hash
			return block, true
		}
		block.Nonce++
	}
}
