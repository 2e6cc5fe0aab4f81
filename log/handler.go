// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"io"
	"log/slog"
	"os"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
)

// Config selects the output format and verbosity of the default logger.
type Config struct {
	Verbosity int
	JSON      bool
}

// NewHandler builds a handler writing to w.
// Terminal output is colored only when w is a tty.
func NewHandler(w io.Writer, cfg Config) slog.Handler {
	level := ethlog.FromLegacyLevel(cfg.Verbosity)

	if cfg.JSON {
		return ethlog.JSONHandlerWithLevel(w, level)
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		useColor = (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
	}
	return ethlog.NewTerminalHandlerWithLevel(w, level, useColor)
}

// Setup installs a default logger writing to w.
func Setup(w io.Writer, cfg Config) {
	SetDefault(NewLogger(NewHandler(w, cfg)))
}

// Discard silences the default logger.
func Discard() {
	SetDefault(NewLogger(ethlog.DiscardHandler()))
}
