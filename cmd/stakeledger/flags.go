// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/log"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for ledger databases",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: int(log.LegacyLevelInfo),
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	metricsFlag = cli.BoolFlag{
		Name:  "metrics",
		Usage: "collect metrics and print them to stderr on exit",
	}

	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the yaml genesis of the ledger",
	}
	fromFlag = cli.StringFlag{
		Name:  "from",
		Usage: "address of the caller",
	}
	toFlag = cli.StringFlag{
		Name:  "to",
		Usage: "address of the receiver",
	}
	addressFlag = cli.StringFlag{
		Name:  "address",
		Usage: "address to query",
	}
	onBehalfOfFlag = cli.StringFlag{
		Name:  "on-behalf-of",
		Usage: "address receiving the staked token (default: caller)",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "amount in base units, decimal or 0x hex, 'max' for everything",
	}
	blockFlag = cli.Uint64Flag{
		Name:  "block",
		Usage: "block number of the operation (default: last block + 1)",
	}
	timeFlag = cli.Uint64Flag{
		Name:  "time",
		Usage: "unix time of the operation (default: now)",
	}
	powerTypeFlag = cli.StringFlag{
		Name:  "type",
		Usage: "power type (voting|proposition), both when omitted",
	}
	keyFileFlag = cli.StringFlag{
		Name:  "key-file",
		Usage: "file holding the hex private key of the delegator",
	}
	nonceFlag = cli.Int64Flag{
		Name:  "nonce",
		Value: -1,
		Usage: "signed delegation nonce (default: current nonce)",
	}
	expiryFlag = cli.Uint64Flag{
		Name:  "expiry",
		Usage: "signature expiry in unix time (default: operation time + 1h)",
	}
	emissionFlag = cli.StringFlag{
		Name:  "emission",
		Usage: "reward emission per second",
	}
	assetFlag = cli.StringFlag{
		Name:  "asset",
		Usage: "rewarded asset (default: the staked token)",
	}
	nameFlag = cli.StringSliceFlag{
		Name:  "name",
		Usage: "event name to select, may repeat",
	}
	fromBlockFlag = cli.Uint64Flag{
		Name:  "from-block",
		Usage: "first block of the range",
	}
	toBlockFlag = cli.Uint64Flag{
		Name:  "to-block",
		Usage: "last block of the range (default: open)",
	}
	limitFlag = cli.Uint64Flag{
		Name:  "limit",
		Value: 100,
		Usage: "maximum events to return",
	}
	offsetFlag = cli.Uint64Flag{
		Name:  "offset",
		Usage: "events to skip",
	}
	descFlag = cli.BoolFlag{
		Name:  "desc",
		Usage: "newest events first",
	}
)

// flags shared by all state changing commands
var envFlags = []cli.Flag{fromFlag, blockFlag, timeFlag}

func withEnv(flags ...cli.Flag) []cli.Flag {
	return append(append([]cli.Flag{}, envFlags...), flags...)
}
