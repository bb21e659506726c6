package node

import (
	"context"

	"github.com/noobcash/noobcash-go/internal/ledger"
	"github.com/noobcash/noobcash-go/internal/wallet"
	"github.com/noobcash/noobcash-go/pkg/result"
)

// CreateTransaction implements spec.md §4.6 "Transaction creation
// (local)": validate the request, greedily select inputs, build and
// sign the transaction, and apply it locally, all under the node lock
// so a concurrent CreateTransaction/IngestTransaction for the same
// sender can never observe the same not-yet-spent UTXOs twice. Only
// the broadcast afterwards runs lock-free, per spec.md §5.
func (n *Node) CreateTransaction(ctx context.Context, recipientAddress string, amount int64) result.Result {
	n.lock()

	if _, known := n.wallets[recipientAddress]; !known {
		n.unlock()
		return result.NotFound("unknown recipient address")
	}
	self := n.wallet.PublicKeyHex()
	if recipientAddress == self {
		n.unlock()
		return result.Conflict("recipient and sender addresses are identical")
	}
	if amount <= 0 {
		n.unlock()
		return result.Invalid("invalid transaction amount")
	}

	inputs, total := n.wallet.SelectInputs(amount)

	tx, err := ledger.CreateTransaction(self, recipientAddress, amount, inputs, n.wallet.PrivateKeyHex())
	if err != nil {
		n.unlock()
		return result.Invalid("failed to build transaction: " + err.Error())
	}

	change := total - amount
	tx.TransactionOutputs = []ledger.Output{
		{UTXOID: utxoID(n.id, tx.ID), TransactionID: tx.ID, Owner: recipientAddress, Amount: amount},
		{UTXOID: utxoID(n.id, tx.ID), TransactionID: tx.ID, Owner: self, Amount: change},
	}

	r := n.validateAndPersistLocked(*tx)
	n.unlock()
	if !r.OK() {
		return r
	}

	n.BroadcastTransaction(ctx, *tx)
	return result.Ok()
}

// IngestTransaction implements spec.md §4.6 "Transaction ingress
// (remote)": validate and, on success, apply and enqueue; no broadcast.
// Signature verification happens before the lock is taken (pure
// computation, no shared state); everything that inspects or mutates
// the sender/recipient wallets or the mempool happens in one critical
// section under the node lock.
func (n *Node) IngestTransaction(tx ledger.Transaction) result.Result {
	if !tx.VerifySignature() {
		return result.Invalid("invalid transaction signature " + tx.ID)
	}

	n.lock()
	r := n.validateAndPersistLocked(tx)
	n.unlock()
	return r
}

// validateAndPersistLocked checks that the sender's recorded UTXOs
// cover the transaction's consumed inputs and, if so, applies the UTXO
// update rule to both affected wallet mirrors and enqueues the
// transaction. Must be called with n.mu already held, and holds it for
// the whole check-then-apply sequence: splitting this into a separate
// locked validate step and a separate locked persist step would let two
// concurrent transactions from the same sender both pass the solvency
// check against the same not-yet-removed UTXOs, a double-spend race.
func (n *Node) validateAndPersistLocked(tx ledger.Transaction) result.Result {
	sender := n.walletOrStub(tx.SenderAddress)

	change := sender.SumInputs(tx.TransactionInputs) - tx.Amount
	if change < 0 {
		return result.Invalid("invalid transaction amount " + tx.ID)
	}
	if len(tx.TransactionOutputs) != 2 {
		n.log.Error("transaction has wrong output count, dropping", "id", tx.ID, "outputs", len(tx.TransactionOutputs))
		return result.Invalid("transaction has wrong output count " + tx.ID)
	}

	recipient := n.walletOrStub(tx.RecipientAddress)
	recipient.AppendUTXO(outputToUTXO(tx.TransactionOutputs[0]))
	sender.RemoveUTXOs(tx.TransactionInputs)
	sender.AppendUTXO(outputToUTXO(tx.TransactionOutputs[1]))

	n.mempool.Add(tx)
	n.emit("transaction", tx)
	return result.Ok()
}

func outputToUTXO(o ledger.Output) wallet.UTXO {
	return wallet.UTXO{ID: o.UTXOID, TransactionID: o.TransactionID, Owner: o.Owner, Amount: o.Amount}
}

// BroadcastTransaction fans tx out to every other peer in the network,
// without holding the node lock during the round trips.
func (n *Node) BroadcastTransaction(ctx context.Context, tx ledger.Transaction) {
	self, peers := n.selfAndPeers()

	for _, p := range peers {
		n.log.Info("broadcasting transaction", "id", tx.ID, "to", p.Address)
		if err := n.peers.Post(ctx, p.Address+"/transactions/broadcast", tx); err != nil {
			n.log.Error("broadcast transaction failed", "to", p.Address, "error", err)
		}
	}
	_ = self
}

// selfAndPeers returns this node's own id and every other network
// entry, snapshotted under the lock.
func (n *Node) selfAndPeers() (int, []Peer) {
	n.lock()
	defer n.unlock()
	return n.selfAndPeersLocked()
}
