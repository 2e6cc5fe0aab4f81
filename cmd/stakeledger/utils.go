// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakeledger/eventdb"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/metrics"
	"github.com/vechain/stakeledger/stake"
)

var logger = log.WithContext("pkg", "cmd")

func initLogger(ctx *cli.Context) error {
	verbosity := ctx.GlobalInt(verbosityFlag.Name)
	if verbosity < log.LegacyLevelCrit || verbosity > log.LegacyLevelTrace {
		return errors.Errorf("invalid verbosity %d", verbosity)
	}
	log.Setup(os.Stderr, log.Config{Verbosity: verbosity, JSON: ctx.GlobalBool(jsonLogsFlag.Name)})
	return nil
}

func initMetrics(ctx *cli.Context) {
	if ctx.GlobalBool(metricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}
}

func dumpMetrics(ctx *cli.Context, w io.Writer) {
	if !ctx.GlobalBool(metricsFlag.Name) {
		return
	}
	if err := metrics.Dump(w); err != nil {
		logger.Warn("failed to dump metrics", "error", err)
	}
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".stakeledger")
	}
	return ""
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.GlobalString(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.New("unable to infer default data dir, use -data-dir to specify")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func openMainDB(dataDir string) (*lvldb.LevelDB, error) {
	path := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(path, lvldb.Options{CacheSize: 16, OpenFilesCacheCapacity: 64})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", path)
	}
	return db, nil
}

func openEventDB(dataDir string) (*eventdb.EventDB, error) {
	path := filepath.Join(dataDir, "events.db")
	db, err := eventdb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open event database [%v]", path)
	}
	return db, nil
}

// instance holds the opened ledger and its databases for one command.
type instance struct {
	mainDB  *lvldb.LevelDB
	eventDB *eventdb.EventDB
	ledger  *ledger.Ledger
}

func openInstance(ctx *cli.Context) (*instance, error) {
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return nil, err
	}
	mainDB, err := openMainDB(dataDir)
	if err != nil {
		return nil, err
	}
	eventDB, err := openEventDB(dataDir)
	if err != nil {
		mainDB.Close()
		return nil, err
	}
	l, err := ledger.Open(mainDB, ledger.Options{})
	if err != nil {
		eventDB.Close()
		mainDB.Close()
		return nil, err
	}
	return &instance{mainDB, eventDB, l}, nil
}

func (in *instance) Close() {
	in.ledger.Close()
	if err := in.eventDB.Close(); err != nil {
		logger.Warn("failed to close event database", "error", err)
	}
	if err := in.mainDB.Close(); err != nil {
		logger.Warn("failed to close main database", "error", err)
	}
}

// index stores the events of a committed operation.
func (in *instance) index(receipt *ledger.Receipt) error {
	if err := in.eventDB.Prepare(receipt).Commit(); err != nil {
		return errors.Wrap(err, "index events")
	}
	return nil
}

// env builds the environment of an operation, defaulting to the block after
// the last committed one at the current wall clock, never before the last
// committed time.
func (in *instance) env(ctx *cli.Context) (ledger.Env, error) {
	caller, err := parseAddress(ctx, fromFlag.Name, true)
	if err != nil {
		return ledger.Env{}, err
	}
	clock, err := in.ledger.LastClock()
	if err != nil {
		return ledger.Env{}, err
	}
	env := ledger.Env{Caller: caller, Number: ctx.Uint64(blockFlag.Name), Time: ctx.Uint64(timeFlag.Name)}
	if !ctx.IsSet(blockFlag.Name) {
		env.Number = clock.Number + 1
	}
	if !ctx.IsSet(timeFlag.Name) {
		env.Time = max(uint64(time.Now().Unix()), clock.Time)
	}
	return env, nil
}

func parseAddress(ctx *cli.Context, flag string, required bool) (stake.Address, error) {
	s := strings.TrimSpace(ctx.String(flag))
	if s == "" {
		if required {
			return stake.Address{}, errors.Errorf("missing --%v", flag)
		}
		return stake.Address{}, nil
	}
	addr, err := stake.ParseAddress(s)
	if err != nil {
		return stake.Address{}, errors.Wrapf(err, "--%v", flag)
	}
	return addr, nil
}

func parseAmount(ctx *cli.Context, flag string, def string) (*uint256.Int, error) {
	s := strings.TrimSpace(ctx.String(flag))
	if s == "" {
		if def == "" {
			return nil, errors.Errorf("missing --%v", flag)
		}
		s = def
	}
	amount, err := ledger.ParseAmount(s)
	if err != nil {
		return nil, errors.Wrapf(err, "--%v", flag)
	}
	return amount, nil
}

// parsePowerTypes returns the selected power type, or all of them.
func parsePowerTypes(ctx *cli.Context) ([]stake.PowerType, error) {
	s := ctx.String(powerTypeFlag.Name)
	if s == "" {
		return stake.PowerTypes(), nil
	}
	typ, err := stake.ParsePowerType(s)
	if err != nil {
		return nil, err
	}
	return []stake.PowerType{typ}, nil
}

func loadGenesis(path string) (*ledger.Genesis, error) {
	if path == "" {
		return nil, errors.Errorf("missing --%v", configFlag.Name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis")
	}
	var g ledger.Genesis
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &g, nil
}

func loadKey(keyFile string) (*ecdsa.PrivateKey, error) {
	if keyFile == "" {
		return nil, errors.Errorf("missing --%v", keyFileFlag.Name)
	}
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, errors.Wrap(err, "read key file")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(string(data)), "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "decode key")
	}
	return key, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
