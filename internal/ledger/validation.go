package ledger

import (
	"fmt"
	"strings"

	"github.com/noobcash/noobcash-go/pkg/result"
)

// ValidateBlock checks b's hash and, unless it is the genesis block, its
// proof-of-work prefix and linkage to previous. previous is the block
// immediately preceding b in the candidate chain.
func ValidateBlock(b Block, previous Block, difficulty int) result.Result {
	hash, err := CalculateHash(b, false)
	if err != nil {
		return result.Invalid(fmt.Sprintf("block %d: failed to hash: %v", b.Index, err))
	}
	if hash != b.CurrentHash {
		return result.Invalid(fmt.Sprintf("block %d has incorrect hash", b.Index))
	}

	if !b.IsGenesis() {
		if b.PreviousHash != previous.CurrentHash {
			return result.Invalid(fmt.Sprintf("block %d previous hash mismatch", b.Index))
		}
		if !strings.HasPrefix(b.CurrentHash, strings.Repeat("0", difficulty)) {
			return result.Invalid(fmt.Sprintf("block %d does not satisfy difficulty %d", b.Index, difficulty))
		}
	}

	return result.Ok()
}

// ValidateChain walks a whole chain pairwise, validating each block
// against its predecessor. The genesis block (index 0) is only
// hash-checked; it is exempt from the proof-of-work prefix and has no
// predecessor to link to.
func ValidateChain(bc Blockchain, difficulty int) result.Result {
	if len(bc.Blocks) == 0 {
		return result.Invalid("chain has no blocks")
	}

	genesisHash, err := CalculateHash(bc.Blocks[0], false)
	if err != nil || genesisHash != bc.Blocks[0].CurrentHash {
		return result.Invalid("genesis block has incorrect hash")
	}

	for i := 1; i < len(bc.Blocks); i++ {
		if r := ValidateBlock(bc.Blocks[i], bc.Blocks[i-1], difficulty); !r.OK() {
			return r
		}
	}
	return result.Ok()
}
