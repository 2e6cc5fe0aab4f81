// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "stakeledger"
	app.Usage = "Staking ledger with cooldown, rewards and delegated power"
	app.Copyright = "2025 The VeChainThor developers"
	app.Flags = []cli.Flag{
		dataDirFlag,
		verbosityFlag,
		jsonLogsFlag,
		metricsFlag,
	}
	app.Before = func(ctx *cli.Context) error {
		if err := initLogger(ctx); err != nil {
			return err
		}
		initMetrics(ctx)
		return nil
	}
	app.After = func(ctx *cli.Context) error {
		dumpMetrics(ctx, os.Stderr)
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:   "init",
			Usage:  "initialize a ledger from a yaml genesis",
			Flags:  []cli.Flag{configFlag, timeFlag},
			Action: initAction,
		},
		{
			Name:   "mint",
			Usage:  "create underlying asset (emission manager only)",
			Flags:  withEnv(toFlag, amountFlag),
			Action: mintAction,
		},
		{
			Name:   "stake",
			Usage:  "stake underlying asset",
			Flags:  withEnv(onBehalfOfFlag, amountFlag),
			Action: stakeAction,
		},
		{
			Name:   "redeem",
			Usage:  "redeem staked token inside the unstake window",
			Flags:  withEnv(toFlag, amountFlag),
			Action: redeemAction,
		},
		{
			Name:   "cooldown",
			Usage:  "start the cooldown of the caller",
			Flags:  withEnv(),
			Action: cooldownAction,
		},
		{
			Name:   "claim",
			Usage:  "claim accrued rewards",
			Flags:  withEnv(toFlag, amountFlag),
			Action: claimAction,
		},
		{
			Name:   "transfer",
			Usage:  "transfer staked token",
			Flags:  withEnv(toFlag, amountFlag),
			Action: transferAction,
		},
		{
			Name:   "delegate",
			Usage:  "delegate power to another account",
			Flags:  withEnv(toFlag, powerTypeFlag),
			Action: delegateAction,
		},
		{
			Name:   "delegate-by-sig",
			Usage:  "sign a delegation with a key file and relay it from the caller",
			Flags:  withEnv(toFlag, powerTypeFlag, keyFileFlag, nonceFlag, expiryFlag),
			Action: delegateBySigAction,
		},
		{
			Name:   "configure-assets",
			Usage:  "change the reward emission (emission manager only)",
			Flags:  withEnv(assetFlag, emissionFlag),
			Action: configureAssetsAction,
		},
		{
			Name:   "account",
			Usage:  "show the state of an account",
			Flags:  []cli.Flag{addressFlag, timeFlag},
			Action: accountAction,
		},
		{
			Name:   "power",
			Usage:  "show the delegated power of an account",
			Flags:  []cli.Flag{addressFlag, powerTypeFlag, blockFlag},
			Action: powerAction,
		},
		{
			Name:   "events",
			Usage:  "query indexed events",
			Flags:  []cli.Flag{addressFlag, nameFlag, fromBlockFlag, toBlockFlag, limitFlag, offsetFlag, descFlag},
			Action: eventsAction,
		},
		{
			Name:   "inspect",
			Usage:  "dump ledger params and clock",
			Action: inspectAction,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
