package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Arkiv-Network/inf-demo/internal/clients/ethclient"
)

type WalkStopReason string

const (
	StopNone              WalkStopReason = ""
	StopReachedStored     WalkStopReason = "reached_stored"
	StopNothingStored     WalkStopReason = "nothing_stored"
	StopReachedGenesis    WalkStopReason = "reached_genesis"
	StopParentFetchFailed WalkStopReason = "parent_fetch_failed"
	StopCycleDetected     WalkStopReason = "cycle_detected"
	StopMaxSteps          WalkStopReason = "max_steps"
)

// ParentWalk iterates from a head block backwards through parent hashes until
// it meets the highest stored block. Every step is bounded: a maximum number
// of yielded blocks and a set of seen hashes guard against runaway or cyclic
// responses from the node.
type ParentWalk struct {
	eth      ethclient.EthInterface
	highest  uint64
	maxSteps int

	next   *ethclient.Block
	cur    *ethclient.Block
	seen   map[common.Hash]struct{}
	steps  int
	reason WalkStopReason
	err    error
}

// NewParentWalk starts at head. highest == 0 means nothing is stored and the
// walk yields the head only.
func NewParentWalk(eth ethclient.EthInterface, head *ethclient.Block, highest uint64, maxSteps int) *ParentWalk {
	return &ParentWalk{
		eth:      eth,
		highest:  highest,
		maxSteps: maxSteps,
		next:     head,
		seen:     map[common.Hash]struct{}{head.Hash: {}},
	}
}

// Next returns the following block of the walk, false once the walk stopped
func (w *ParentWalk) Next(ctx context.Context) (*ethclient.Block, bool) {
	if w.reason != StopNone {
		return nil, false
	}

	if w.next == nil {
		w.advance(ctx)
		if w.reason != StopNone {
			return nil, false
		}
	}

	w.cur, w.next = w.next, nil
	w.steps++
	return w.cur, true
}

func (w *ParentWalk) advance(ctx context.Context) {
	cur := w.cur
	switch {
	case w.highest == 0:
		w.reason = StopNothingStored
		return
	case cur.Number <= w.highest+1:
		w.reason = StopReachedStored
		return
	case cur.Number == 0:
		w.reason = StopReachedGenesis
		return
	case w.steps >= w.maxSteps:
		w.reason = StopMaxSteps
		return
	}

	parent, err := w.eth.GetBlockByHash(ctx, cur.ParentHash.Hex())
	if err != nil {
		w.reason = StopParentFetchFailed
		w.err = err
		return
	}
	if _, ok := w.seen[parent.Hash]; ok {
		w.reason = StopCycleDetected
		return
	}
	if parent.Number <= w.highest {
		w.reason = StopReachedStored
		return
	}

	w.seen[parent.Hash] = struct{}{}
	w.next = parent
}

// Collect drains the walk
func (w *ParentWalk) Collect(ctx context.Context) []*ethclient.Block {
	var blocks []*ethclient.Block
	for {
		b, ok := w.Next(ctx)
		if !ok {
			return blocks
		}
		blocks = append(blocks, b)
	}
}

func (w *ParentWalk) StopReason() WalkStopReason {
	return w.reason
}

// Err returns the parent fetch error that stopped the walk, if any
func (w *ParentWalk) Err() error {
	return w.err
}

func (w *ParentWalk) Steps() int {
	return w.steps
}
