// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb indexes committed ledger receipts in sqlite for querying.
package eventdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/stake"
)

var logger = log.WithContext("pkg", "eventdb")

const insertEvent = "INSERT INTO event(blockNumber, blockTime, op, caller, eventIndex, name, account0, account1, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);"

type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	// a memory database lives as long as its single connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("event db opened", "path", path, "sqlite", driverVer)
	return &EventDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close close the event db.
func (db *EventDB) Close() error {
	return db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

func (db *EventDB) DriverVersion() string {
	return db.driverVersion
}

// Prepare starts a batch holding the events of receipts.
func (db *EventDB) Prepare(receipts ...*ledger.Receipt) *Batch {
	return &Batch{db: db.db, receipts: receipts}
}

// FilterEvents returns the events selected by filter in commit order.
func (db *EventDB) FilterEvents(ctx context.Context, filter *Filter) ([]*Event, error) {
	const query = "SELECT seq, blockNumber, blockTime, op, caller, eventIndex, name, account0, account1, data FROM event"
	if filter == nil {
		return db.queryEvents(ctx, query+" ORDER BY seq ASC")
	}
	metricsHandleFilter(filter)

	var args []any
	stmt := query + " WHERE 1"
	if filter.Range != nil {
		condition := "blockNumber"
		if filter.Range.Unit == Time {
			condition = "blockTime"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + condition + " >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + condition + " <= ? "
		}
	}
	if len(filter.Accounts) > 0 {
		marks := placeholders(len(filter.Accounts))
		stmt += " AND (account0 IN (" + marks + ") OR account1 IN (" + marks + ")) "
		for range 2 {
			for _, a := range filter.Accounts {
				args = append(args, a.Bytes())
			}
		}
	}
	if len(filter.Names) > 0 {
		stmt += " AND name IN (" + placeholders(len(filter.Names)) + ") "
		for _, n := range filter.Names {
			args = append(args, n)
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func (db *EventDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			event    Event
			caller   []byte
			accounts [2][]byte
			data     string
		)
		if err := rows.Scan(
			&event.Seq,
			&event.BlockNumber,
			&event.BlockTime,
			&event.Op,
			&caller,
			&event.Index,
			&event.Name,
			&accounts[0],
			&accounts[1],
			&data,
		); err != nil {
			return nil, err
		}
		event.Caller = stake.BytesToAddress(caller)
		for _, a := range accounts {
			if len(a) > 0 {
				event.Accounts = append(event.Accounts, stake.BytesToAddress(a))
			}
		}
		event.Data = json.RawMessage(data)
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func accountValue(accounts []stake.Address, i int) []byte {
	if i >= len(accounts) || accounts[i].IsZero() {
		return nil
	}
	return accounts[i].Bytes()
}

// Batch writes the events of some receipts in one sql transaction.
type Batch struct {
	db       *sql.DB
	receipts []*ledger.Receipt
}

func (b *Batch) execInTx(proc func(*sql.Tx) error) error {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (b *Batch) Commit() error {
	var n int64
	err := b.execInTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(insertEvent)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range b.receipts {
			for i, ev := range r.Events {
				data, err := json.Marshal(ev)
				if err != nil {
					return errors.Wrapf(err, "encode %v", ev.Name())
				}
				accounts := ev.Accounts()
				if _, err := stmt.Exec(
					r.Number,
					r.Time,
					r.Op,
					r.Caller.Bytes(),
					i,
					ev.Name(),
					accountValue(accounts, 0),
					accountValue(accounts, 1),
					string(data),
				); err != nil {
					return err
				}
				n++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	metricInserted().Add(n)
	return nil
}
