package node

import (
	"context"
	"fmt"
	"time"

	"github.com/noobcash/noobcash-go/internal/crypto"
	"github.com/noobcash/noobcash-go/internal/ledger"
	"github.com/noobcash/noobcash-go/internal/wallet"
	"github.com/noobcash/noobcash-go/pkg/result"
)

// NewBootstrap builds network id 0: it generates its own wallet, mints
// the genesis transaction (sender "0", amount 100*NNodes) and seals it
// into the genesis block, per spec.md §4.6.
func NewBootstrap(cfg Config) (*Node, error) {
	n := newNode(cfg)
	n.id = 0

	w, err := wallet.Generate()
	if err != nil {
		return nil, fmt.Errorf("bootstrap: generate wallet: %w", err)
	}
	n.wallet = w
	n.wallets[w.PublicKeyHex()] = w
	n.network = append(n.network, Peer{Address: n.Address(), PublicKey: w.PublicKeyHex()})

	amount := int64(100 * cfg.NNodes)
	genesisID, err := ledger.ComputeTransactionID(SinkAddress, w.PublicKeyHex(), amount, nil)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: build genesis transaction: %w", err)
	}
	// The genesis transaction is unsigned: there is no keypair for the
	// sink address "0", so it carries an empty signature rather than
	// going through the ordinary sign-on-create path.
	genesis := &ledger.Transaction{
		SenderAddress:     SinkAddress,
		RecipientAddress:  w.PublicKeyHex(),
		Amount:            amount,
		TransactionInputs: nil,
		ID:                genesisID,
		Signature:         "",
	}

	genesis.TransactionOutputs = []ledger.Output{
		{UTXOID: utxoID(0, genesis.ID), TransactionID: genesis.ID, Owner: w.PublicKeyHex(), Amount: amount},
		{UTXOID: utxoID(0, genesis.ID), TransactionID: genesis.ID, Owner: SinkAddress, Amount: 0},
	}

	w.SetUTXOs([]wallet.UTXO{
		{ID: genesis.TransactionOutputs[0].UTXOID, TransactionID: genesis.ID, Owner: w.PublicKeyHex(), Amount: amount},
	})

	genesisBlock := ledger.Block{
		Index:        0,
		Timestamp:    time.Now().UTC(),
		Nonce:        0,
		PreviousHash: ledger.GenesisPreviousHash,
		Transactions: []ledger.Transaction{*genesis},
	}
	hash, err := ledger.CalculateHash(genesisBlock, false)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: hash genesis block: %w", err)
	}
	genesisBlock.CurrentHash = hash
	n.blockchain.Append(genesisBlock)

	n.log.Info("bootstrap node initialized", "address", n.Address(), "n_nodes", cfg.NNodes)
	return n, nil
}

// NewPeer builds an ordinary (non-bootstrap) node skeleton. Its wallet
// is generated immediately (spec.md §4.6 "peer enrollment" step 1); its
// id, network, blockchain and wallet mirrors are installed later by
// RegisterWithBootstrap and HandleEnroll.
func NewPeer(cfg Config) (*Node, error) {
	n := newNode(cfg)

	w, err := wallet.Generate()
	if err != nil {
		return nil, fmt.Errorf("peer: generate wallet: %w", err)
	}
	n.wallet = w
	n.wallets[w.PublicKeyHex()] = w

	n.log.Info("peer node initialized", "address", n.Address())
	return n, nil
}

// utxoID mirrors the source's "<node_id>:<transaction_id>" convention.
func utxoID(nodeID int, transactionID string) string {
	return fmt.Sprintf("%d:%s", nodeID, transactionID)
}

// registerRequest/response mirror spec.md §6.1's POST /nodes/register.
type registerRequest struct {
	Port      int    `json:"port"`
	PublicKey string `json:"public_key"`
}

type registerResponse struct {
	ID int `json:"id"`
}

// enrollRequest mirrors spec.md §6.1's POST /nodes/enroll.
type enrollRequest struct {
	Network    []Peer           `json:"network"`
	Blockchain ledger.Blockchain `json:"blockchain"`
	Wallets    []WalletWire     `json:"wallets"`
}

// RegisterWithBootstrap performs the peer side of enrollment: POST its
// own (port, public key) to the bootstrap's /nodes/register and record
// the assigned id.
func (n *Node) RegisterWithBootstrap(ctx context.Context, bootstrapURL string) error {
	req := registerRequest{Port: n.cfg.Port, PublicKey: n.wallet.PublicKeyHex()}

	var resp registerResponse
	if err := n.postJSONGetJSON(ctx, bootstrapURL+"/nodes/register", req, &resp); err != nil {
		return fmt.Errorf("register with bootstrap: %w", err)
	}

	n.lock()
	n.id = resp.ID
	n.unlock()

	n.log.Info("registered with bootstrap", "id", resp.ID, "bootstrap", bootstrapURL)
	return nil
}

// postJSONGetJSON is a small helper: registration needs the response
// body, so it goes through peerclient.Client.PostJSON rather than the
// fire-and-forget Post.
func (n *Node) postJSONGetJSON(ctx context.Context, url string, body, out any) error {
	return n.peers.PostJSON(ctx, url, body, out)
}

// HandleRegister is the bootstrap side of POST /nodes/register: assign
// the next sequential id, append the joiner to the roster and its stub
// wallet to the registry. Once the Nth node has joined, enrollment and
// initial funding are pushed out asynchronously (outside the lock).
func (n *Node) HandleRegister(remoteAddress, publicKey string) (int, error) {
	n.lock()
	if !n.isBootstrapLocked() {
		n.unlock()
		return 0, fmt.Errorf("register: not the bootstrap node")
	}

	id := len(n.network)
	if id >= n.cfg.NNodes {
		n.unlock()
		return 0, fmt.Errorf("register: network already full")
	}

	n.network = append(n.network, Peer{Address: remoteAddress, PublicKey: publicKey})
	n.wallets[publicKey] = wallet.NewStub(publicKey)

	full := len(n.network) == n.cfg.NNodes
	network := append([]Peer(nil), n.network...)
	n.unlock()

	n.log.Info("registered peer", "id", id, "address", remoteAddress)

	if full {
		go n.completeEnrollment(context.Background(), network)
	}

	return id, nil
}

func (n *Node) isBootstrapLocked() bool {
	return n.id == 0
}

// completeEnrollment pushes the full network, chain and wallet registry
// to every peer, then funds each of them with 100 coins. Runs without
// the node lock held for the duration of the outbound calls, per
// spec.md §5.
func (n *Node) completeEnrollment(ctx context.Context, network []Peer) {
	n.lock()
	bc := n.blockchain.Clone()
	wallets := make([]WalletWire, 0, len(n.wallets))
	for pub, w := range n.wallets {
		wallets = append(wallets, WalletWire{PublicKey: pub, UTXOs: w.UTXOs()})
	}
	n.unlock()

	req := enrollRequest{Network: network, Blockchain: bc, Wallets: wallets}

	for i, peer := range network {
		if i == n.id {
			continue
		}
		n.log.Info("enrolling peer", "address", peer.Address)
		if err := n.peers.Post(ctx, peer.Address+"/nodes/enroll", req); err != nil {
			n.log.Error("enroll failed", "address", peer.Address, "error", err)
		}
	}

	time.Sleep(5 * time.Second)

	for i, peer := range network {
		if i == n.id {
			continue
		}
		if r := n.CreateTransaction(ctx, peer.PublicKey, 100); !r.OK() {
			n.log.Error("initial funding transaction failed", "to", peer.Address, "message", r.Message)
		}
	}
}

// HandleEnroll is the peer side of POST /nodes/enroll: validate the
// received chain, then install network, blockchain and wallet mirrors,
// keeping this node's own wallet intact.
func (n *Node) HandleEnroll(network []Peer, bc ledger.Blockchain, wallets []WalletWire) result.Result {
	if r := ledger.ValidateChain(bc, n.cfg.Difficulty); !r.OK() {
		return r
	}

	n.lock()
	defer n.unlock()

	n.network = append([]Peer(nil), network...)
	n.blockchain = bc

	own := n.wallet.PublicKeyHex()
	for _, ww := range wallets {
		if ww.PublicKey == own {
			n.wallet.SetUTXOs(ww.UTXOs)
			continue
		}
		w := wallet.NewStub(ww.PublicKey)
		w.SetUTXOs(ww.UTXOs)
		n.wallets[ww.PublicKey] = w
	}

	for i, p := range n.network {
		if p.PublicKey == own {
			n.id = i
			break
		}
	}

	n.log.Info("enrolled", "id", n.id, "network_size", len(n.network))
	return result.Ok()
}

// verifySelfSignedGenesis reports whether tx's signature verifies
// against its sender, or is empty as on the unsigned genesis
// transaction.
func verifySelfSignedGenesis(tx ledger.Transaction) bool {
	return crypto.Verify(tx.ID, tx.Signature, tx.SenderAddress) || tx.Signature == ""
}
