// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import "github.com/vechain/stakeledger/metrics"

var (
	metricOps        = metrics.LazyLoadCounterVec("ledger_ops_count", []string{"op", "result"})
	metricOpDuration = metrics.LazyLoadHistogramVec("ledger_op_duration_us", []string{"op"}, metrics.BucketMicros)
	metricEvents     = metrics.LazyLoadCounterVec("ledger_events_count", []string{"name"})
	metricSlotWrites = metrics.LazyLoadHistogram("ledger_slot_writes", []int64{0, 1, 2, 4, 8, 16, 32, 64})
)
