package node

import (
	"context"
	"time"

	"github.com/noobcash/noobcash-go/internal/consensus"
	"github.com/noobcash/noobcash-go/internal/ledger"
	"github.com/noobcash/noobcash-go/pkg/result"
)

// RunMiningLoop runs the node's mining worker until ctx is cancelled.
// It waits for the mempool to reach capacity, seals a candidate block,
// mines it lock-free, then validates, appends and broadcasts it — per
// spec.md §4.6 "Mining loop" and the concurrency contract in §5.
//
// Call this in its own goroutine. ctx is checked before each wait and
// during proof-of-work; while blocked waiting for the mempool to reach
// capacity, the loop does not observe ctx and does not return.
func (n *Node) RunMiningLoop(ctx context.Context) {
	n.log.Info("mining worker started", "capacity", n.cfg.Capacity, "difficulty", n.cfg.Difficulty)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pending := n.mempool.Wait()
		if len(pending) == 0 {
			continue
		}

		start := time.Now()

		n.lock()
		index := n.blockchain.Len()
		previousHash := n.blockchain.Tail().CurrentHash
		n.unlock()

		candidate := ledger.Block{
			Index:        index,
			Timestamp:    time.Now().UTC(),
			Nonce:        0,
			PreviousHash: previousHash,
			Transactions: pending,
		}

		n.log.Info("mining block", "index", candidate.Index, "transactions", len(candidate.Transactions))
		mined, ok := consensus.Mine(ctx, candidate, n.cfg.Difficulty)
		if !ok {
			return
		}
		miningElapsed := time.Since(start)
		n.log.Info("finished mining block", "index", mined.Index, "hash", mined.CurrentHash)

		if r := n.sealBlock(mined); !r.OK() {
			n.log.Error("mined block rejected, discarding", "index", mined.Index, "message", r.Message)
			continue
		}

		n.BroadcastBlock(ctx, mined)
		n.metrics.RecordBlock(miningElapsed, time.Since(start))
	}
}

// sealBlock validates a freshly mined block against the current tail
// and, on success, appends it and clears the mempool entries it
// consumed. Holds the lock for the whole check-then-append sequence so
// no other block can be appended in between.
func (n *Node) sealBlock(block ledger.Block) result.Result {
	n.lock()
	defer n.unlock()

	tail := n.blockchain.Tail()
	if r := ledger.ValidateBlock(block, tail, n.cfg.Difficulty); !r.OK() {
		return r
	}

	n.blockchain.Append(block)

	sealed := make(map[string]struct{}, len(block.Transactions))
	for _, tx := range block.Transactions {
		sealed[tx.ID] = struct{}{}
	}
	pending := n.mempool.Snapshot()
	n.mempool.Clear()
	for _, tx := range pending {
		if _, ok := sealed[tx.ID]; !ok {
			n.mempool.Add(tx)
		}
	}

	n.emit("block", block)
	return result.Ok()
}

// BroadcastBlock fans a mined or ingested block out to every other
// peer.
func (n *Node) BroadcastBlock(ctx context.Context, block ledger.Block) {
	_, peers := n.selfAndPeers()
	for _, p := range peers {
		n.log.Info("broadcasting block", "index", block.Index, "to", p.Address)
		if err := n.peers.Post(ctx, p.Address+"/blocks/broadcast", block); err != nil {
			n.log.Error("broadcast block failed", "to", p.Address, "error", err)
		}
	}
}

// IngestBlock is the handler for POST /blocks/broadcast: validate
// against the current tail; on success append, otherwise run conflict
// resolution (spec.md §4.6 "Block ingress").
func (n *Node) IngestBlock(ctx context.Context, block ledger.Block) result.Result {
	if r := n.sealBlock(block); r.OK() {
		return result.Ok()
	}

	n.log.Info("block rejected, resolving conflict", "index", block.Index)
	n.ResolveConflict(ctx)
	return result.Ok()
}
