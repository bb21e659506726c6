// Package ledger holds the transaction, block and chain types plus the
// canonical hashing and validation rules that tie them together.
package ledger

import (
	"encoding/hex"

	"github.com/noobcash/noobcash-go/internal/canonicaljson"
	"github.com/noobcash/noobcash-go/internal/crypto"
)

// SinkAddress is the synthetic sender/recipient address used by the
// genesis transaction and its zero-amount change output.
const SinkAddress = "0"

// Output is one of a transaction's two outputs: a redeemable amount
// assigned to Owner, identified by UTXOID.
type Output struct {
	UTXOID        string `json:"utxo_id"`
	TransactionID string `json:"transaction_id"`
	Owner         string `json:"owner_address"`
	Amount        int64  `json:"amount"`
}

// Transaction moves Amount from SenderAddress to RecipientAddress,
// consuming TransactionInputs and producing exactly two
// TransactionOutputs: the recipient's output first, the sender's change
// second.
type Transaction struct {
	SenderAddress       string   `json:"sender_address"`
	RecipientAddress    string   `json:"recipient_address"`
	Amount              int64    `json:"amount"`
	TransactionInputs   []string `json:"transaction_inputs"`
	TransactionOutputs  []Output `json:"transaction_outputs"`
	ID                  string   `json:"id"`
	Signature           string   `json:"signature"`
}

// idView is the exact field set hashed to produce a transaction's ID:
// outputs are omitted (they're attached by the sender afterwards, to
// encode change) and signature is explicitly null.
type idView struct {
	SenderAddress      string   `json:"sender_address"`
	RecipientAddress   string   `json:"recipient_address"`
	Amount             int64    `json:"amount"`
	TransactionInputs  []string `json:"transaction_inputs"`
	TransactionOutputs []Output `json:"transaction_outputs"`
	Signature          *string  `json:"signature"`
}

// ComputeTransactionID returns the canonical-JSON SHA-256 ID for a
// transaction with the given sender, recipient, amount and inputs, per
// spec.md §4.1. Exported for the genesis transaction, which carries no
// real signature and so cannot go through CreateTransaction.
func ComputeTransactionID(sender, recipient string, amount int64, inputs []string) (string, error) {
	return computeID(sender, recipient, amount, inputs)
}

func computeID(sender, recipient string, amount int64, inputs []string) (string, error) {
	view := idView{
		SenderAddress:      sender,
		RecipientAddress:   recipient,
		Amount:             amount,
		TransactionInputs:  inputs,
		TransactionOutputs: []Output{},
		Signature:          nil,
	}
	data, err := canonicaljson.Marshal(view)
	if err != nil {
		return "", err
	}
	return sha256Hex(data), nil
}

// CreateTransaction builds and signs a new transaction. The caller is
// responsible for attaching TransactionOutputs afterwards: they are not
// part of the hashed/signed id view.
func CreateTransaction(senderAddress, recipientAddress string, amount int64, inputs []string, privateKeyHex string) (*Transaction, error) {
	id, err := computeID(senderAddress, recipientAddress, amount, inputs)
	if err != nil {
		return nil, err
	}

	sig, err := crypto.Sign(id, privateKeyHex)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		SenderAddress:     senderAddress,
		RecipientAddress:  recipientAddress,
		Amount:            amount,
		TransactionInputs: inputs,
		ID:                id,
		Signature:         sig,
	}, nil
}

// VerifySignature checks the transaction's signature against its sender
// address (the sender's hex-encoded public key).
func (t *Transaction) VerifySignature() bool {
	return crypto.Verify(t.ID, t.Signature, t.SenderAddress)
}

func sha256Hex(data []byte) string {
	return hex.EncodeToString(sha256Sum(data))
}
