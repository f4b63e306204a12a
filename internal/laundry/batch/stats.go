// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package batch

import (
	"math"

	"github.com/taibuivan/laundrytrack/internal/platform/constants"
	"github.com/taibuivan/laundrytrack/pkg/slice"
)

// Stats summarises a user's batches against the storage capacity.
type Stats struct {
	TotalItems   int     `json:"total_items"`
	TotalBatches int     `json:"total_batches"`
	Received     int     `json:"received"`
	Pending      int     `json:"pending"`
	MaxItems     int     `json:"max_items"`
	UsagePercent float64 `json:"usage_percent"`
	NearFull     bool    `json:"near_full"`
	Full         bool    `json:"full"`
}

// ComputeStats derives the statistics of batches. Usage is rounded to one decimal.
func ComputeStats(batches []LaundryBatch, maxItems int) Stats {
	stats := Stats{
		TotalBatches: len(batches),
		MaxItems:     maxItems,
		TotalItems:   slice.Reduce(batches, 0, func(sum int, b LaundryBatch) int { return sum + len(b.Items) }),
		Received: slice.Reduce(batches, 0, func(sum int, b LaundryBatch) int {
			received, _ := b.Counts()
			return sum + received
		}),
	}
	stats.Pending = stats.TotalItems - stats.Received

	if maxItems > 0 {
		usage := float64(stats.TotalItems) / float64(maxItems) * 100
		stats.UsagePercent = math.Round(usage*10) / 10
		stats.NearFull = usage >= constants.NearFullPercent
		stats.Full = stats.TotalItems >= maxItems
	}

	return stats
}
