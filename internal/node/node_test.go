package node

import (
	"context"
	"testing"

	"github.com/noobcash/noobcash-go/internal/ledger"
)

func mustBootstrap(t *testing.T, nNodes, capacity, difficulty int) *Node {
	t.Helper()
	n, err := NewBootstrap(Config{IP: "127.0.0.1", Port: 0, Capacity: capacity, Difficulty: difficulty, NNodes: nNodes})
	if err != nil {
		t.Fatalf("NewBootstrap: %v", err)
	}
	return n
}

func mustDebugBootstrap(t *testing.T, nNodes, capacity, difficulty int) *Node {
	t.Helper()
	n, err := NewBootstrap(Config{IP: "127.0.0.1", Port: 0, Capacity: capacity, Difficulty: difficulty, NNodes: nNodes, Debug: true})
	if err != nil {
		t.Fatalf("NewBootstrap: %v", err)
	}
	return n
}

// mustUnsignedTransaction builds a transaction whose id/signature were
// never produced by ledger.CreateTransaction, so VerifySignature must
// reject it.
func mustUnsignedTransaction(t *testing.T, sender, recipient string, amount int64) ledger.Transaction {
	t.Helper()
	id, err := ledger.ComputeTransactionID(sender, recipient, amount, nil)
	if err != nil {
		t.Fatalf("ComputeTransactionID: %v", err)
	}
	return ledger.Transaction{
		SenderAddress:    sender,
		RecipientAddress: recipient,
		Amount:           amount,
		ID:               id,
		Signature:        "",
	}
}

func TestNewBootstrapFundsGenesisBalance(t *testing.T) {
	n := mustBootstrap(t, 2, 10, 1)

	if got, want := n.Balance(), int64(200); got != want {
		t.Fatalf("Balance() = %d, want %d (100*NNodes)", got, want)
	}
	if n.ID() != 0 {
		t.Fatalf("ID() = %d, want 0", n.ID())
	}
	if !n.IsBootstrap() {
		t.Fatal("expected bootstrap node to report IsBootstrap() true")
	}
	if n.Blockchain().Len() != 1 {
		t.Fatalf("expected a single genesis block, got %d", n.Blockchain().Len())
	}
}

func TestNewPeerHasNoBalanceOrIDUntilEnrolled(t *testing.T) {
	n, err := NewPeer(Config{IP: "127.0.0.1", Port: 0, Capacity: 10, Difficulty: 1, NNodes: 2})
	if err != nil {
		t.Fatalf("NewPeer: %v", err)
	}
	if n.ID() != -1 {
		t.Fatalf("ID() = %d, want -1 before enrollment", n.ID())
	}
	if n.IsBootstrap() {
		t.Fatal("expected an unenrolled peer to not report as bootstrap")
	}
	if n.Balance() != 0 {
		t.Fatalf("Balance() = %d, want 0 before enrollment", n.Balance())
	}
}

func TestHandleRegisterRejectsWhenNetworkFull(t *testing.T) {
	n := mustBootstrap(t, 1, 10, 1) // network already full with just the bootstrap

	if _, err := n.HandleRegister("http://127.0.0.1:6001", "some-pub-key"); err == nil {
		t.Fatal("expected HandleRegister to reject once the network is full")
	}
}

func TestHandleRegisterAssignsSequentialIDsAndStoresStubWallet(t *testing.T) {
	n := mustBootstrap(t, 3, 10, 1)

	id, err := n.HandleRegister("http://127.0.0.1:6001", "peer-pub-1")
	if err != nil {
		t.Fatalf("HandleRegister: %v", err)
	}
	if id != 1 {
		t.Fatalf("id = %d, want 1", id)
	}

	network := n.Network()
	if len(network) != 2 {
		t.Fatalf("expected 2 network entries, got %d", len(network))
	}
	if network[1].PublicKey != "peer-pub-1" {
		t.Fatalf("network[1].PublicKey = %q, want peer-pub-1", network[1].PublicKey)
	}
}

func TestCreateTransactionRejectsSelfSend(t *testing.T) {
	n := mustBootstrap(t, 1, 10, 1)

	r := n.CreateTransaction(context.Background(), n.Wallet().PublicKeyHex(), 10)
	if r.OK() {
		t.Fatal("expected self-send to be rejected")
	}
}

func TestCreateTransactionRejectsUnknownRecipient(t *testing.T) {
	n := mustBootstrap(t, 1, 10, 1)

	r := n.CreateTransaction(context.Background(), "totally-unknown-address", 10)
	if r.OK() {
		t.Fatal("expected unknown recipient to be rejected")
	}
}

func TestCreateTransactionRejectsNonPositiveAmount(t *testing.T) {
	n := mustBootstrap(t, 2, 10, 1)
	if _, err := n.HandleRegister("http://127.0.0.1:6001", "peer-pub-1"); err != nil {
		t.Fatalf("HandleRegister: %v", err)
	}

	r := n.CreateTransaction(context.Background(), "peer-pub-1", 0)
	if r.OK() {
		t.Fatal("expected non-positive amount to be rejected")
	}
}

func TestCreateTransactionSucceedsAndUpdatesBalances(t *testing.T) {
	n := mustDebugBootstrap(t, 2, 10, 1)
	if _, err := n.HandleRegister("http://127.0.0.1:6001", "peer-pub-1"); err != nil {
		t.Fatalf("HandleRegister: %v", err)
	}

	startBalance := n.Balance()
	r := n.CreateTransaction(context.Background(), "peer-pub-1", 50)
	if !r.OK() {
		t.Fatalf("expected transaction to succeed, got %+v", r)
	}

	if got, want := n.Balance(), startBalance-50; got != want {
		t.Fatalf("sender balance = %d, want %d", got, want)
	}

	txs := n.ViewTransactions()
	found := false
	for _, tx := range txs {
		if tx.RecipientAddress == "peer-pub-1" && tx.Amount == 50 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the created transaction to appear via ViewTransactions in debug mode or the mempool")
	}
}

func TestIngestTransactionRejectsInvalidSignature(t *testing.T) {
	n := mustBootstrap(t, 1, 10, 1)

	bad := mustUnsignedTransaction(t, n.Wallet().PublicKeyHex(), "someone", 10)
	r := n.IngestTransaction(bad)
	if r.OK() {
		t.Fatal("expected a transaction with an empty/invalid signature to be rejected")
	}
}
