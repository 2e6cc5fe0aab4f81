// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

// one row per ledger event, in commit order
const eventTableSchema = `
create table if not exists event (
	seq integer primary key autoincrement,
	blockNumber integer,
	blockTime integer,
	op text,
	caller blob(20),
	eventIndex integer,
	name text,
	account0 blob(20),
	account1 blob(20),
	data text
);

CREATE INDEX if not exists blockNumberIndex on event(blockNumber);
CREATE INDEX if not exists blockTimeIndex on event(blockTime);
CREATE INDEX if not exists nameIndex on event(name);
CREATE INDEX if not exists accountIndex0 on event(account0);
CREATE INDEX if not exists accountIndex1 on event(account1);
`
