// Package node implements the noobcash node state machine: the network
// roster, wallet registry, mempool, mining worker and the operations
// that keep them consistent under one lock, per spec.md §4.6 and §5.
package node

import (
	"encoding/json"
	"fmt"

	"github.com/noobcash/noobcash-go/internal/ledger"
	"github.com/noobcash/noobcash-go/internal/mempool"
	"github.com/noobcash/noobcash-go/internal/metrics"
	"github.com/noobcash/noobcash-go/internal/peerclient"
	"github.com/noobcash/noobcash-go/internal/wallet"
	"github.com/noobcash/noobcash-go/pkg/logging"
)

// SinkAddress mirrors ledger.SinkAddress: the synthetic address "0"
// used as the genesis transaction's sender and its zero-amount change
// recipient.
const SinkAddress = ledger.SinkAddress

// Peer is one entry of the network roster: a node's address and
// public-key address, transmitted on the wire as a 2-element JSON array
// (`[url, pub]`) to match spec.md §6.1.
type Peer struct {
	Address   string
	PublicKey string
}

// MarshalJSON encodes p as the 2-element array the peer wire protocol
// expects.
func (p Peer) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Address, p.PublicKey})
}

// UnmarshalJSON decodes p from a 2-element array.
func (p *Peer) UnmarshalJSON(data []byte) error {
	var arr [2]string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	p.Address, p.PublicKey = arr[0], arr[1]
	return nil
}

// WalletWire is the over-the-wire representation of a wallet mirror,
// used by the enroll request and nowhere else (a node's own private key
// never leaves the process).
type WalletWire struct {
	PublicKey string        `json:"public_key"`
	UTXOs     []wallet.UTXO `json:"utxos"`
}

// EventSink receives best-effort notifications of node activity, for
// the supplemental live event stream (spec.md §6.1 is silent on it;
// SPEC_FULL.md §6.1 supplements it). A nil sink means no one is
// listening.
type EventSink interface {
	Emit(eventType string, payload any)
}

// Config holds the construction-time parameters of a Node, mirroring
// the Node configuration fields of spec.md §3.
type Config struct {
	IP         string
	Port       int
	Capacity   int
	Difficulty int
	NNodes     int
	Debug      bool
}

// Node is the per-process state machine described in spec.md §3 and
// §4.6. A single mutex (mu) guards Blockchain, Mempool's internal
// queue, Wallets and Network together, per the concurrency contract in
// spec.md §5; outbound HTTP calls never run while mu is held.
type Node struct {
	cfg Config

	mu         chan struct{} // binary semaphore; see lock()/unlock()
	id         int           // -1 until assigned
	network    []Peer
	blockchain ledger.Blockchain
	wallets    map[string]*wallet.Wallet // by public key, includes own

	wallet  *wallet.Wallet
	mempool *mempool.Mempool
	metrics *metrics.Metrics

	peers *peerclient.Client
	log   *logging.Logger
	events EventSink
}

// newNode builds the common skeleton shared by bootstrap and peer
// construction.
func newNode(cfg Config) *Node {
	n := &Node{
		cfg:     cfg,
		mu:      make(chan struct{}, 1),
		id:      -1,
		wallets: make(map[string]*wallet.Wallet),
		mempool: mempool.New(cfg.Capacity),
		metrics: metrics.New(),
		peers:   peerclient.New(0),
		log:     logging.GetDefault().Component("node"),
	}
	n.mu <- struct{}{}
	return n
}

// lock acquires the node-wide mutex. Implemented as a buffered channel
// rather than sync.Mutex so the same primitive can back a future
// context-aware TryLock without changing call sites; today it behaves
// exactly like sync.Mutex.Lock.
func (n *Node) lock() {
	<-n.mu
}

func (n *Node) unlock() {
	n.mu <- struct{}{}
}

// SetEventSink wires up the live event stream. Safe to call once during
// startup, before the node starts handling traffic.
func (n *Node) SetEventSink(sink EventSink) {
	n.events = sink
}

func (n *Node) emit(eventType string, payload any) {
	if n.events != nil {
		n.events.Emit(eventType, payload)
	}
}

// ID returns the node's assigned network id, or -1 if not yet
// registered.
func (n *Node) ID() int {
	n.lock()
	defer n.unlock()
	return n.id
}

// IsBootstrap reports whether this node is network id 0.
func (n *Node) IsBootstrap() bool {
	return n.ID() == 0
}

// Capacity, Difficulty and NNodes return the node's static
// configuration.
func (n *Node) Capacity() int   { return n.cfg.Capacity }
func (n *Node) Difficulty() int { return n.cfg.Difficulty }
func (n *Node) NNodes() int     { return n.cfg.NNodes }
func (n *Node) Debug() bool     { return n.cfg.Debug }
func (n *Node) Address() string { return fmt.Sprintf("http://%s:%d", n.cfg.IP, n.cfg.Port) }

// Wallet returns the node's own wallet.
func (n *Node) Wallet() *wallet.Wallet {
	return n.wallet
}

// Balance returns the node's own current balance.
func (n *Node) Balance() int64 {
	return n.wallet.Balance()
}

// Blockchain returns a snapshot copy of the chain, safe to hand to an
// HTTP response writer or outbound broadcast without holding the lock.
func (n *Node) Blockchain() ledger.Blockchain {
	n.lock()
	defer n.unlock()
	return n.blockchain.Clone()
}

// Network returns a copy of the current roster.
func (n *Node) Network() []Peer {
	n.lock()
	defer n.unlock()
	return append([]Peer(nil), n.network...)
}

// Metrics returns the node's own metrics snapshot.
func (n *Node) Metrics() metrics.Snapshot {
	return n.metrics.Snapshot()
}

// ViewTransactions returns the last block's transactions, plus the
// current mempool contents when running in debug mode, per spec.md
// §6.1's GET /transactions/.
func (n *Node) ViewTransactions() []ledger.Transaction {
	n.lock()
	tail := n.blockchain.Tail()
	n.unlock()

	txs := append([]ledger.Transaction(nil), tail.Transactions...)
	if n.cfg.Debug {
		txs = append(txs, n.mempool.Snapshot()...)
	}
	return txs
}

// walletOrStub returns the wallet mirror for address, creating a stub
// mirror and registering it if this is the first time address has been
// observed. Must be called under n.mu.
func (n *Node) walletOrStub(address string) *wallet.Wallet {
	if w, ok := n.wallets[address]; ok {
		return w
	}
	w := wallet.NewStub(address)
	n.wallets[address] = w
	return w
}
