package node

import (
	"context"

	"github.com/noobcash/noobcash-go/internal/ledger"
)

// ResolveConflict implements spec.md §4.6 "Conflict resolution": fetch
// every peer's chain, keep the longest one that validates, and replace
// the local chain if it is strictly longer. Ties keep the local chain.
//
// Per spec.md §9 (Open Question: conflict resolution side effects),
// this does NOT replay the mempool or rebuild wallet UTXOs from the
// adopted chain — a documented limitation carried over unchanged from
// the source, not silently fixed here.
func (n *Node) ResolveConflict(ctx context.Context) {
	n.log.Info("resolving conflict")

	n.lock()
	longest := n.blockchain.Clone()
	_, peers := n.selfAndPeersLocked()
	n.unlock()

	maxLength := longest.Len()

	for _, p := range peers {
		n.log.Info("retrieving blockchain", "from", p.Address)

		var bc ledger.Blockchain
		if err := n.peers.Get(ctx, p.Address+"/blockchain/", &bc); err != nil {
			n.log.Error("fetch blockchain failed", "from", p.Address, "error", err)
			continue
		}

		if r := ledger.ValidateChain(bc, n.cfg.Difficulty); !r.OK() {
			continue
		}
		if bc.Len() > maxLength {
			maxLength, longest = bc.Len(), bc
		}
	}

	n.lock()
	n.blockchain = longest
	n.unlock()

	n.log.Info("conflict resolved", "chain_length", maxLength)
}

// selfAndPeersLocked is selfAndPeers' body, callable while n.mu is
// already held.
func (n *Node) selfAndPeersLocked() (int, []Peer) {
	self := n.id
	peers := make([]Peer, 0, len(n.network))
	for i, p := range n.network {
		if i == self {
			continue
		}
		peers = append(peers, p)
	}
	return self, peers
}
