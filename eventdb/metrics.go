// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"strings"

	"github.com/vechain/stakeledger/metrics"
)

var (
	metricQueryParameters = metrics.LazyLoadCounterVec("eventdb_query_parameters", []string{"parameters"})
	metricQueryOrder      = metrics.LazyLoadCounterVec("eventdb_query_order", []string{"order"})
	metricLimitBucket     = metrics.LazyLoadHistogram("eventdb_query_limit_bucket", []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
	metricInserted = metrics.LazyLoadCounter("eventdb_inserted_count")
)

func metricsHandleFilter(filter *Filter) {
	var params []string
	if filter.Range != nil {
		params = append(params, "range:"+string(filter.Range.Unit))
	}
	if len(filter.Accounts) > 0 {
		params = append(params, "accounts")
	}
	if len(filter.Names) > 0 {
		params = append(params, "names")
	}
	metricQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(params, ",")})

	order := ASC
	if filter.Order == DESC {
		order = DESC
	}
	metricQueryOrder().AddWithLabel(1, map[string]string{"order": string(order)})

	if filter.Options != nil {
		limit := filter.Options.Limit
		if limit > 1000 {
			limit = 1001
		}
		metricLimitBucket().Observe(int64(limit))
	}
}
