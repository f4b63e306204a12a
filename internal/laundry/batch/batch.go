// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package batch owns laundry batches and the clothes inside them.

A batch is a named group of items sent to the laundry together. Each item is
checked off as received when it comes back. Checking is optimistic: the new
value is visible immediately and rolled back if the write fails.

An item may go back from received to pending only a limited number of times
(the uncheck limit). The limit is enforced here, not by clients.
*/
package batch

import (
	"time"

	"github.com/taibuivan/laundrytrack/pkg/pointer"
	"github.com/taibuivan/laundrytrack/pkg/slice"
)

// JSON and validation field names.
const (
	FieldName   = "name"
	FieldPhoto  = "photo"
	FieldLabel  = "label"
	FieldTag    = "tag"
	FieldStatus = "status"
)

const (
	// MaxNameLength bounds a batch name, in characters.
	MaxNameLength = 100

	// MaxLabelLength bounds an item label, in characters.
	MaxLabelLength = 100
)

// ClothItem is one garment inside a batch.
type ClothItem struct {
	ID           string     `json:"id"`
	Photo        string     `json:"photo"`
	Label        *string    `json:"label"`
	Tag          string     `json:"tag"`
	IsReceived   bool       `json:"is_received"`
	AddedAt      time.Time  `json:"added_at"`
	ReceivedAt   *time.Time `json:"received_at,omitempty"`
	UncheckCount int        `json:"uncheck_count"`
}

// LaundryBatch is a named group of items. Items keep insertion order.
type LaundryBatch struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []ClothItem `json:"items"`
}

// NewCloth is the input of AddClothToBatch.
type NewCloth struct {
	Photo string `json:"photo"`
	Label string `json:"label"`
	Tag   string `json:"tag"`
}

// ReceivedState is the part of an item a toggle writes.
type ReceivedState struct {
	IsReceived   bool
	ReceivedAt   *time.Time
	UncheckCount int
}

// receivedState extracts the toggle-owned fields of the item.
func (item ClothItem) receivedState() ReceivedState {
	return ReceivedState{
		IsReceived:   item.IsReceived,
		ReceivedAt:   pointer.Clone(item.ReceivedAt),
		UncheckCount: item.UncheckCount,
	}
}

// setReceivedState overwrites the toggle-owned fields of the item.
func (item *ClothItem) setReceivedState(state ReceivedState) {
	item.IsReceived = state.IsReceived
	item.ReceivedAt = pointer.Clone(state.ReceivedAt)
	item.UncheckCount = state.UncheckCount
}

// Counts returns how many items are received and pending. They always sum to len(Items).
func (batch LaundryBatch) Counts() (received, pending int) {
	received = slice.Count(batch.Items, func(item ClothItem) bool { return item.IsReceived })
	return received, len(batch.Items) - received
}

// clone returns a deep copy safe to hand to callers.
func (batch LaundryBatch) clone() LaundryBatch {
	items := make([]ClothItem, len(batch.Items))
	for i, item := range batch.Items {
		items[i] = item.clone()
	}
	batch.Items = items
	return batch
}

func (item ClothItem) clone() ClothItem {
	item.Label = pointer.Clone(item.Label)
	item.ReceivedAt = pointer.Clone(item.ReceivedAt)
	return item
}
