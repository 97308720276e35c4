// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.13
//

package atmdelay

import (
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Logfmt logger filtered by debug display level
// (0: warnings and errors, 1: info, 2 or more: debug)
func NewLogger(w io.Writer, dbg int) log.Logger {
	l := log.NewLogfmtLogger(log.NewSyncWriter(w))
	l = log.With(l, "ts", log.DefaultTimestampUTC)
	var opt level.Option
	switch {
	case dbg <= 0:
		opt = level.AllowWarn()
	case dbg == 1:
		opt = level.AllowInfo()
	default:
		opt = level.AllowDebug()
	}
	return level.NewFilter(l, opt)
}

func nopIfNil(l log.Logger) log.Logger {
	if l == nil {
		return log.NewNopLogger()
	}
	return l
}
