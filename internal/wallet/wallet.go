// Package wallet holds a participant's keypair and its local mirror of
// unspent transaction outputs. Every node keeps a full Wallet for itself
// and a stub Wallet (public key plus UTXO mirror, no private key) for
// every other participant, so arriving transactions can be validated
// against the sender's recorded balance.
package wallet

import (
	"fmt"
	"sync"

	"github.com/noobcash/noobcash-go/internal/crypto"
)

// UTXO is a single unspent transaction output: an amount redeemable
// exactly once by Owner.
type UTXO struct {
	ID            string `json:"utxo_id"`
	TransactionID string `json:"transaction_id"`
	Owner         string `json:"owner_address"`
	Amount        int64  `json:"amount"`
}

// Wallet holds a keypair (empty for a stub/mirror wallet) and an ordered
// UTXO set. Reads and writes are synchronized so the node's HTTP handlers
// and mining worker can touch different wallets concurrently.
type Wallet struct {
	mu            sync.RWMutex
	publicKeyHex  string
	privateKeyHex string
	utxos         []UTXO
}

// Generate creates a wallet around a freshly minted RSA-2048 keypair.
func Generate() (*Wallet, error) {
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("wallet: generate: %w", err)
	}
	return &Wallet{publicKeyHex: kp.PublicKeyHex, privateKeyHex: kp.PrivateKeyHex}, nil
}

// NewOwned wraps an existing hex-encoded keypair in a Wallet with an
// empty UTXO list.
func NewOwned(publicKeyHex, privateKeyHex string) *Wallet {
	return &Wallet{publicKeyHex: publicKeyHex, privateKeyHex: privateKeyHex}
}

// NewStub creates a wallet mirror for a remote participant: a public key
// and an empty UTXO list, no private key.
func NewStub(publicKeyHex string) *Wallet {
	return &Wallet{publicKeyHex: publicKeyHex}
}

// PublicKeyHex returns the wallet's address.
func (w *Wallet) PublicKeyHex() string {
	return w.publicKeyHex
}

// PrivateKeyHex returns the wallet's private key, empty for a stub
// wallet.
func (w *Wallet) PrivateKeyHex() string {
	return w.privateKeyHex
}

// Balance returns the sum of amounts over the wallet's current UTXOs.
// Always non-negative since UTXO amounts are never negative.
func (w *Wallet) Balance() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var total int64
	for _, u := range w.utxos {
		total += u.Amount
	}
	return total
}

// UTXOs returns a copy of the wallet's current UTXO list, in insertion
// order.
func (w *Wallet) UTXOs() []UTXO {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]UTXO, len(w.utxos))
	copy(out, w.utxos)
	return out
}

// SetUTXOs replaces the wallet's UTXO list wholesale, used to seed the
// bootstrap's own wallet with the genesis output.
func (w *Wallet) SetUTXOs(utxos []UTXO) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.utxos = append([]UTXO(nil), utxos...)
}

// AppendUTXO appends a single output to the wallet's UTXO list, used when
// applying a transaction's recipient or change output.
func (w *Wallet) AppendUTXO(u UTXO) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.utxos = append(w.utxos, u)
}

// RemoveUTXOs rebuilds the UTXO list with every UTXO whose ID appears in
// spent removed. This is a filter, not a mutating indexed walk: the
// original implementation's indexed deletion loop advanced the index even
// after removing an element, silently skipping the UTXO that slid into
// its place whenever two consumed UTXOs were adjacent. Rebuild-by-filter
// has no such blind spot.
func (w *Wallet) RemoveUTXOs(spent []string) {
	spentSet := make(map[string]struct{}, len(spent))
	for _, id := range spent {
		spentSet[id] = struct{}{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	kept := w.utxos[:0:0]
	for _, u := range w.utxos {
		if _, gone := spentSet[u.ID]; !gone {
			kept = append(kept, u)
		}
	}
	w.utxos = kept
}

// SumInputs returns the total amount covered by the UTXOs in the wallet
// whose IDs appear in ids. UTXOs not present in the wallet contribute
// nothing, matching the original's behavior of trusting whatever the
// sender's own mirror already holds.
func (w *Wallet) SumInputs(ids []string) int64 {
	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	var total int64
	for _, u := range w.utxos {
		if _, want := idSet[u.ID]; want {
			total += u.Amount
		}
	}
	return total
}

// SelectInputs greedily walks the wallet's UTXOs in stored order,
// collecting IDs until their summed amount covers amount. It returns the
// collected input IDs and their total; the caller compares the total
// against amount to decide whether the wallet can cover the spend.
func (w *Wallet) SelectInputs(amount int64) (ids []string, total int64) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, u := range w.utxos {
		if total >= amount {
			break
		}
		ids = append(ids, u.ID)
		total += u.Amount
	}
	return ids, total
}
