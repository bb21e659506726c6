package ledger

import "testing"

func buildValidChain(t *testing.T, difficulty int) Blockchain {
	t.Helper()

	genesis := Block{Index: 0, PreviousHash: GenesisPreviousHash}
	genesisHash, err := CalculateHash(genesis, false)
	if err != nil {
		t.Fatalf("CalculateHash: %v", err)
	}
	genesis.CurrentHash = genesisHash

	next, err := mineForTest(Block{Index: 1, PreviousHash: genesis.CurrentHash}, difficulty)
	if err != nil {
		t.Fatalf("mineForTest: %v", err)
	}

	var bc Blockchain
	bc.Append(genesis)
	bc.Append(next)
	return bc
}

// mineForTest is a minimal brute-force nonce search, independent of the
// consensus package to avoid a ledger->consensus import cycle in tests.
// It returns b with the found nonce and its CurrentHash set.
func mineForTest(b Block, difficulty int) (Block, error) {
	target := make([]byte, difficulty)
	for i := range target {
		target[i] = '0'
	}
	for {
		hash, err := CalculateHash(b, false)
		if err != nil {
			return Block{}, err
		}
		if len(hash) >= difficulty && hash[:difficulty] == string(target) {
			b.CurrentHash = hash
			return b, nil
		}
		b.Nonce++
	}
}

func TestValidateChainAcceptsValidChain(t *testing.T) {
	bc := buildValidChain(t, 1)
	if r := ValidateChain(bc, 1); !r.OK() {
		t.Fatalf("expected valid chain to validate, got %v", r)
	}
}

func TestValidateChainRejectsEmptyChain(t *testing.T) {
	if r := ValidateChain(Blockchain{}, 1); r.OK() {
		t.Fatal("expected empty chain to be rejected")
	}
}

func TestValidateChainRejectsBadGenesisHash(t *testing.T) {
	bc := buildValidChain(t, 0)
	bc.Blocks[0].CurrentHash = "not-the-real-hash"
	if r := ValidateChain(bc, 0); r.OK() {
		t.Fatal("expected chain with tampered genesis hash to be rejected")
	}
}

func TestValidateChainRejectsBrokenPreviousHashLink(t *testing.T) {
	bc := buildValidChain(t, 0)
	bc.Blocks[1].PreviousHash = "does-not-match-genesis"
	if r := ValidateChain(bc, 0); r.OK() {
		t.Fatal("expected chain with broken previous-hash link to be rejected")
	}
}

func TestValidateChainRejectsInsufficientDifficulty(t *testing.T) {
	bc := buildValidChain(t, 0)
	if r := ValidateChain(bc, 8); r.OK() {
		t.Fatal("expected chain mined at difficulty 0 to fail validation at difficulty 8")
	}
}

func TestValidateChainGenesisExemptFromDifficulty(t *testing.T) {
	// Genesis never satisfies an arbitrary difficulty prefix itself; only
	// non-genesis blocks are checked against it.
	bc := buildValidChain(t, 3)
	if r := ValidateChain(bc, 3); !r.OK() {
		t.Fatalf("expected genesis block to be exempt from the difficulty check, got %v", r)
	}
}
