// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log

import (
	"fmt"
	"os"
	fp "path/filepath"
	"sync"
	"time"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log/flags"
)

// Base name of the live log within the directory given to AddFileLog.
const LogName = "recovery.log"

// fileLog appends timestamped lines to a file. Writes happen on a dedicated
// goroutine fed by a bounded channel; producers block only on channel
// backpressure, never on disk latency. Timestamps are seconds since the log
// was opened, matching the ring of logs the main system expects to collect.
type fileLog struct {
	lines   chan LogEntry
	f       *os.File
	start   time.Time
	next    StackableLogger
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

var _ StackableLogger = (*fileLog)(nil)

const FileLogIdent = "fileLog"

const fileLogDepth = 256

// Adds a file logger writing to dir/recovery.log, creating dir if necessary.
// Entries accumulated in a memLog so far are replayed into the file, so the
// caller may FlushMemLog afterward without losing history.
func AddFileLog(dir string) (path string, err error) {
	if err = os.MkdirAll(dir, 0755); err != nil {
		return
	}
	path = fp.Join(dir, LogName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	fl := &fileLog{
		lines: make(chan LogEntry, fileLogDepth),
		f:     f,
		start: time.Now(),
	}
	fl.wg.Add(1)
	go fl.writer()
	if err = AddLogger(fl, false); err != nil {
		fl.shutdown()
		return
	}
	for _, e := range StoredEntries() {
		fl.AddEntry(e)
	}
	return
}

func (fl *fileLog) AddEntry(e LogEntry) {
	if e.Flags&flags.NotFile == 0 {
		fl.lines <- e
	}
	if fl.next != nil {
		fl.next.AddEntry(e)
	}
}

func (fl *fileLog) writer() {
	defer fl.wg.Done()
	for e := range fl.lines {
		d := e.Time.Sub(fl.start).Seconds()
		fmt.Fprintf(fl.f, "[%12.6f] %s\n", d, e.String())
	}
	fl.f.Sync()
	fl.f.Close()
}

// Drain blocks until every queued line has been handed to the writer, then
// syncs the file. Call before copying the live log elsewhere.
func (fl *fileLog) Drain() {
	for len(fl.lines) > 0 {
		time.Sleep(time.Millisecond)
	}
	fl.f.Sync()
}

// SyncFileLog flushes the file logger in the stack, if any, so that the
// on-disk log is current.
func SyncFileLog() {
	logStackMtx.Lock()
	sl := FindInStack(FileLogIdent)
	logStackMtx.Unlock()
	if sl == nil {
		return
	}
	sl.(*fileLog).Drain()
}

func (fl *fileLog) ForwardTo(sl StackableLogger) {
	if fl.next == nil || sl == nil {
		fl.next = sl
	} else {
		panic("next already set")
	}
}

func (fl *fileLog) Ident() string         { return FileLogIdent }
func (fl *fileLog) Next() StackableLogger { return fl.next }

func (fl *fileLog) shutdown() {
	fl.closeMu.Lock()
	defer fl.closeMu.Unlock()
	if fl.closed {
		return
	}
	fl.closed = true
	close(fl.lines)
	fl.wg.Wait()
}

func (fl *fileLog) Finalize() {
	fl.shutdown()
	if fl.next != nil {
		fl.next.Finalize()
	}
}
