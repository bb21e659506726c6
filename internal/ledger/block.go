package ledger

import (
	"encoding/hex"
	"time"

	"github.com/noobcash/noobcash-go/internal/canonicaljson"
)

// GenesisPreviousHash is the sentinel previous-hash value carried by the
// genesis block. Fixed to the string "1" (spec.md §9, Open Question:
// genesis previous_hash) rather than the integer-like form the original
// implementation used inconsistently.
const GenesisPreviousHash = "1"

// Block is one link in the chain: an ordered batch of transactions bound
// together by a proof-of-work hash over everything but CurrentHash
// itself.
type Block struct {
	Index         int           `json:"index"`
	Timestamp     time.Time     `json:"timestamp"`
	Nonce         uint64        `json:"nonce"`
	PreviousHash  string        `json:"previous_hash"`
	Transactions  []Transaction `json:"transactions"`
	CurrentHash   string        `json:"current_hash,omitempty"`
}

// hashView is the field set hashed into CurrentHash: every field except
// CurrentHash itself.
type hashView struct {
	Index        int           `json:"index"`
	Timestamp    time.Time     `json:"timestamp"`
	Nonce        uint64        `json:"nonce"`
	PreviousHash string        `json:"previous_hash"`
	Transactions []Transaction `json:"transactions"`
}

// CalculateHash returns the canonical-JSON SHA-256 hash of b. With
// includeHash false (the default during mining and validation) the
// current_hash field is omitted from the hashed representation; with it
// true, the block is hashed exactly as it would be transmitted, current
// hash and all.
func CalculateHash(b Block, includeHash bool) (string, error) {
	if includeHash {
		data, err := canonicaljson.Marshal(b)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(sha256Sum(data)), nil
	}

	view := hashView{
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		Nonce:        b.Nonce,
		PreviousHash: b.PreviousHash,
		Transactions: b.Transactions,
	}
	data, err := canonicaljson.Marshal(view)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sha256Sum(data)), nil
}

// IsGenesis reports whether b is the chain's genesis block.
func (b Block) IsGenesis() bool {
	return b.Index == 0
}
