package wallet

import "testing"

func TestBalanceSumsUTXOs(t *testing.T) {
	w := NewStub("addr")
	w.SetUTXOs([]UTXO{
		{ID: "a", Amount: 10},
		{ID: "b", Amount: 25},
	})
	if got := w.Balance(); got != 35 {
		t.Fatalf("Balance() = %d, want 35", got)
	}
}

func TestAppendUTXO(t *testing.T) {
	w := NewStub("addr")
	w.AppendUTXO(UTXO{ID: "a", Amount: 10})
	w.AppendUTXO(UTXO{ID: "b", Amount: 5})
	if got := w.Balance(); got != 15 {
		t.Fatalf("Balance() = %d, want 15", got)
	}
	if len(w.UTXOs()) != 2 {
		t.Fatalf("expected 2 utxos, got %d", len(w.UTXOs()))
	}
}

func TestRemoveUTXOsHandlesAdjacentSpends(t *testing.T) {
	w := NewStub("addr")
	w.SetUTXOs([]UTXO{
		{ID: "a", Amount: 10},
		{ID: "b", Amount: 20},
		{ID: "c", Amount: 30},
		{ID: "d", Amount: 40},
	})

	// b and c are adjacent; a naive indexed-deletion loop that advances
	// its index after removing an element would skip one of these.
	w.RemoveUTXOs([]string{"b", "c"})

	remaining := w.UTXOs()
	if len(remaining) != 2 {
		t.Fatalf("expected 2 remaining utxos, got %d: %+v", len(remaining), remaining)
	}
	ids := map[string]bool{remaining[0].ID: true, remaining[1].ID: true}
	if !ids["a"] || !ids["d"] {
		t.Fatalf("expected a and d to remain, got %+v", remaining)
	}
}

func TestRemoveUTXOsNoMatchLeavesAllIntact(t *testing.T) {
	w := NewStub("addr")
	w.SetUTXOs([]UTXO{{ID: "a", Amount: 10}, {ID: "b", Amount: 20}})
	w.RemoveUTXOs([]string{"nonexistent"})
	if len(w.UTXOs()) != 2 {
		t.Fatalf("expected 2 utxos to remain, got %d", len(w.UTXOs()))
	}
}

func TestSumInputsIgnoresUnknownIDs(t *testing.T) {
	w := NewStub("addr")
	w.SetUTXOs([]UTXO{{ID: "a", Amount: 10}, {ID: "b", Amount: 20}})
	if got := w.SumInputs([]string{"a", "b", "ghost"}); got != 30 {
		t.Fatalf("SumInputs() = %d, want 30", got)
	}
	if got := w.SumInputs([]string{"ghost"}); got != 0 {
		t.Fatalf("SumInputs() with only unknown ids = %d, want 0", got)
	}
}

func TestSelectInputsGreedyCoverage(t *testing.T) {
	w := NewStub("addr")
	w.SetUTXOs([]UTXO{
		{ID: "a", Amount: 10},
		{ID: "b", Amount: 10},
		{ID: "c", Amount: 10},
	})

	ids, total := w.SelectInputs(15)
	if total < 15 {
		t.Fatalf("SelectInputs total %d does not cover requested amount 15", total)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 inputs selected, got %d: %+v", len(ids), ids)
	}
}

func TestSelectInputsInsufficientBalance(t *testing.T) {
	w := NewStub("addr")
	w.SetUTXOs([]UTXO{{ID: "a", Amount: 5}})

	ids, total := w.SelectInputs(100)
	if total != 5 {
		t.Fatalf("SelectInputs total = %d, want 5 (only available balance)", total)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 input selected, got %d", len(ids))
	}
}

func TestGenerateProducesDistinctKeypairs(t *testing.T) {
	w1, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	w2, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if w1.PublicKeyHex() == w2.PublicKeyHex() {
		t.Fatal("expected distinct public keys across Generate calls")
	}
	if w1.PrivateKeyHex() == "" {
		t.Fatal("expected non-empty private key")
	}
}

func TestNewStubHasNoPrivateKey(t *testing.T) {
	w := NewStub("addr")
	if w.PrivateKeyHex() != "" {
		t.Fatal("expected stub wallet to have no private key")
	}
	if w.PublicKeyHex() != "addr" {
		t.Fatalf("PublicKeyHex() = %q, want %q", w.PublicKeyHex(), "addr")
	}
}
