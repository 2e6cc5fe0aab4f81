// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements the staking ledger: stake and redeem with a
// cooldown, reward accrual and historical delegated power.
package ledger

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/dsa"
	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/ledger/checkpoints"
	"github.com/vechain/stakeledger/ledger/cooldown"
	"github.com/vechain/stakeledger/ledger/delegation"
	"github.com/vechain/stakeledger/ledger/reverts"
	"github.com/vechain/stakeledger/ledger/rewards"
	"github.com/vechain/stakeledger/ledger/token"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/stake"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/storage"
)

var (
	logger = log.WithContext("pkg", "ledger")

	// metaAddress holds ledger wide records that are needed before params are known.
	metaAddress = stake.BytesToAddress([]byte("stakeledger-meta"))
	slotParams  = storage.Slot("params")
	slotClock   = storage.Slot("clock")

	ErrNotInitialized     = errors.New("ledger not initialized")
	ErrAlreadyInitialized = errors.New("ledger already initialized")
)

func SetLogger(l log.Logger) {
	logger = l
}

// Recoverer returns the signer of a digest.
type Recoverer func(digest stake.Bytes32, sig []byte) (stake.Address, error)

// TransferHook observes every balance change of the staked token inside the
// operation. An error aborts the operation.
type TransferHook interface {
	OnTransfer(from, to stake.Address, amount *uint256.Int) error
}

// Options of an opened ledger.
type Options struct {
	Recoverer Recoverer
	Hook      TransferHook
}

// Env is the execution environment of one operation.
// Number and Time are read once and never go backwards across operations.
type Env struct {
	Caller stake.Address
	Number uint64
	Time   uint64
}

// Clock is the environment of the last committed operation.
type Clock struct {
	Number uint64
	Time   uint64
}

// Ledger is the single writer of the staking state.
type Ledger struct {
	mu     sync.RWMutex
	sendMu sync.Mutex

	st     *state.State
	params *Params
	clock  *storage.Raw[*Clock]
	domain stake.Bytes32

	staked      *token.Service
	underlying  *token.Service
	rewards     *rewards.Service
	cooldown    *cooldown.Service
	checkpoints *checkpoints.Service
	delegation  *delegation.Service

	recoverer Recoverer
	hook      TransferHook

	feed  event.Feed
	scope event.SubscriptionScope
}

func metaContext(st *state.State) *storage.Context {
	return storage.NewContext(metaAddress, st)
}

// Initialize writes a new ledger described by genesis into db.
// initTime starts the reward distribution.
func Initialize(db kv.Store, genesis *Genesis, initTime uint64) (*Params, error) {
	st := state.New(db)
	meta := metaContext(st)
	stored, err := storage.NewRaw[*Params](meta, slotParams).Get()
	if err != nil {
		return nil, err
	}
	if !stored.Address.IsZero() {
		return nil, ErrAlreadyInitialized
	}

	params, err := genesis.Params(initTime)
	if err != nil {
		return nil, err
	}
	if err := storage.NewRaw[*Params](meta, slotParams).Set(params); err != nil {
		return nil, err
	}
	if err := storage.NewRaw[*Clock](meta, slotClock).Set(&Clock{Time: initTime}); err != nil {
		return nil, err
	}

	sctx := storage.NewContext(params.Address, st)
	rw := rewards.New(sctx)
	if err := rw.SetDistributionEnd(params.DistributionEnd); err != nil {
		return nil, err
	}
	emission, err := ParseAmount(genesis.EmissionPerSecond)
	if err != nil {
		return nil, err
	}
	if !emission.IsZero() {
		if _, _, err := rw.ConfigureAsset(params.Address, emission, new(uint256.Int), initTime); err != nil {
			return nil, err
		}
	}

	underlying := token.New(storage.NewContext(params.Underlying, st))
	for _, alloc := range genesis.Allocations {
		amount, err := ParseAmount(alloc.Amount)
		if err != nil {
			return nil, err
		}
		if err := underlying.Mint(alloc.Account, amount); err != nil {
			return nil, errors.Wrapf(err, "allocation to %v", alloc.Account)
		}
	}

	if err := st.Stage().Commit(); err != nil {
		return nil, err
	}
	logger.Info("ledger initialized", "address", params.Address, "name", params.Name, "distribution-end", params.DistributionEnd)
	return params, nil
}

// Open loads an initialized ledger from db.
func Open(db kv.Store, opts Options) (*Ledger, error) {
	st := state.New(db)
	meta := metaContext(st)
	params, err := storage.NewRaw[*Params](meta, slotParams).Get()
	if err != nil {
		return nil, err
	}
	if params.Address.IsZero() {
		return nil, ErrNotInitialized
	}

	sctx := storage.NewContext(params.Address, st)
	cps := checkpoints.New(sctx)
	l := &Ledger{
		st:          st,
		params:      params,
		clock:       storage.NewRaw[*Clock](meta, slotClock),
		domain:      delegation.DomainSeparator(params.Name, params.ChainID, params.Address),
		staked:      token.New(sctx),
		underlying:  token.New(storage.NewContext(params.Underlying, st)),
		rewards:     rewards.New(sctx),
		cooldown:    cooldown.New(sctx, params.CooldownSeconds, params.UnstakeWindow),
		checkpoints: cps,
		delegation:  delegation.New(sctx, cps),
		recoverer:   opts.Recoverer,
		hook:        opts.Hook,
	}
	if l.recoverer == nil {
		l.recoverer = dsa.Signer
	}
	return l, nil
}

// Close stops all receipt subscriptions.
func (l *Ledger) Close() {
	l.scope.Close()
}

// SubscribeReceipts delivers the receipt of every committed operation.
func (l *Ledger) SubscribeReceipts(ch chan<- *Receipt) event.Subscription {
	return l.scope.Track(l.feed.Subscribe(ch))
}

// Params returns the initialization params.
func (l *Ledger) Params() Params {
	return *l.params
}

// DomainSeparator returns the signing domain of delegations by signature.
func (l *Ledger) DomainSeparator() stake.Bytes32 {
	return l.domain
}

// txn carries one operation through the services.
type txn struct {
	env    Env
	events []Event
}

func (tx *txn) emit(ev ...Event) {
	tx.events = append(tx.events, ev...)
}

// execute runs fn as one atomic operation. On failure every state change
// made by fn is discarded and nothing is published.
func (l *Ledger) execute(op string, env Env, fn func(tx *txn) error) (*Receipt, error) {
	start := time.Now()
	result := "ok"
	defer func() {
		metricOps().AddWithLabel(1, map[string]string{"op": op, "result": result})
		metricOpDuration().ObserveWithLabels(time.Since(start).Microseconds(), map[string]string{"op": op})
	}()

	l.mu.Lock()
	receipt, err := l.apply(op, env, fn)
	if err != nil {
		l.mu.Unlock()
		result = "revert"
		if !reverts.IsRevertErr(err) {
			result = "error"
			logger.Warn("operation failed", "op", op, "caller", env.Caller, "number", env.Number, "error", err)
		} else {
			logger.Info("operation rejected", "op", op, "caller", env.Caller, "number", env.Number, "error", err)
		}
		return nil, err
	}
	// hand over to the publisher so receipts are sent in commit order
	l.sendMu.Lock()
	l.mu.Unlock()
	defer l.sendMu.Unlock()

	for _, ev := range receipt.Events {
		metricEvents().AddWithLabel(1, map[string]string{"name": ev.Name()})
	}
	l.feed.Send(receipt)
	logger.Debug("operation committed", "op", op, "caller", env.Caller, "number", env.Number, "events", len(receipt.Events))
	return receipt, nil
}

func (l *Ledger) apply(op string, env Env, fn func(tx *txn) error) (*Receipt, error) {
	clock, err := l.clock.Get()
	if err != nil {
		return nil, err
	}
	if env.Number < clock.Number || env.Time < clock.Time {
		return nil, reverts.Newf(reverts.KindClockRegression, "environment older than last committed operation")
	}

	rev := l.st.NewCheckpoint()
	tx := &txn{env: env}
	if err := fn(tx); err != nil {
		l.st.RevertTo(rev)
		return nil, err
	}
	if err := l.clock.Set(&Clock{Number: env.Number, Time: env.Time}); err != nil {
		l.st.RevertTo(rev)
		return nil, err
	}

	metricSlotWrites().Observe(int64(l.st.Changes()))
	if err := l.st.Stage().Commit(); err != nil {
		l.st.RevertTo(rev)
		return nil, errors.Wrap(err, "commit")
	}
	return &Receipt{
		Op:     op,
		Caller: env.Caller,
		Number: env.Number,
		Time:   env.Time,
		Events: tx.events,
	}, nil
}
