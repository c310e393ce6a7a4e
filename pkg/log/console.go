// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log

import (
	"fmt"
	"io"
	"os"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log/flags"
)

const stampMilli = "15:04:05.000" //like time.StampMilli, but leaves off date

// consoleLog echoes entries to stderr (or another writer) as they arrive.
type consoleLog struct {
	out  io.Writer
	skip flags.Flag //entries with any of these flags are not echoed
	next StackableLogger
}

var _ StackableLogger = (*consoleLog)(nil)

const ConsoleLogIdent = "consoleLog"

// Adds a console logger to the stack. Entries with a flag in 'skip' are
// forwarded but not echoed; pass flags.NA to echo everything.
func AddConsoleLog(skip flags.Flag) error {
	return AddLogger(&consoleLog{out: os.Stderr, skip: skip | flags.NotConsole}, false)
}

func (cl *consoleLog) AddEntry(e LogEntry) {
	if e.Flags&cl.skip == 0 {
		fmt.Fprintf(cl.out, "@%s: %s\n", e.Time.Format(stampMilli), e.String())
	}
	if cl.next != nil {
		cl.next.AddEntry(e)
	}
}

func (cl *consoleLog) ForwardTo(sl StackableLogger) {
	if cl.next == nil || sl == nil {
		cl.next = sl
	} else {
		panic("next already set")
	}
}

func (cl *consoleLog) Ident() string         { return ConsoleLogIdent }
func (cl *consoleLog) Next() StackableLogger { return cl.next }

func (cl *consoleLog) Finalize() {
	if cl.next != nil {
		cl.next.Finalize()
	}
}
