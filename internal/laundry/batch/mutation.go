// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package batch

import "sync"

// Phase is the lifecycle stage of an optimistic toggle.
type Phase string

const (
	// PhasePending: applied in memory, write in flight.
	PhasePending Phase = "pending"

	// PhaseCommitted: the write succeeded, or a newer toggle superseded it.
	PhaseCommitted Phase = "committed"

	// PhaseReverting: the write failed; memory is being restored.
	PhaseReverting Phase = "reverting"
)

// itemKey identifies an item across a user's batches.
type itemKey struct {
	userID  string
	batchID string
	itemID  string
}

// batchKey identifies a batch of a user.
type batchKey struct {
	userID  string
	batchID string
}

// Mutation is one optimistic toggle of an item.
type Mutation struct {
	Version uint64
	Next    ReceivedState
	Phase   Phase

	key itemKey
}

/*
itemTrack orders the toggles of one item.

  - latest is the most recently issued toggle. Only it may write or revert;
    older ones are superseded. Its phase is what [Store.Syncing] reports.
  - confirmed is the last state known to be persisted, used as the revert target.
  - write serialises the persistence calls of this item so writes land in
    issue order.

All fields except write are guarded by the owning Store's mutex, and so is
the Phase of every Mutation.
*/
type itemTrack struct {
	latest    *Mutation
	confirmed ReceivedState
	inflight  int
	write     sync.Mutex
}
