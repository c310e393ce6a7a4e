// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package log implements a stack of loggers. Entries flow from the head of
// the stack to its tail; each logger decides what to do with an entry before
// forwarding it. The default stack contains only a memLog, which accumulates
// entries in memory until a real sink (console, file) is added - nothing
// logged before the file log exists is lost.
//
// Logf records detail for the durable log; Msgf additionally flags the entry
// as fit for the end user's screen. Fatalf logs and then runs the configured
// FailAction - in production that reboots the device, under test it calls
// t.Errorf. See SetFatalAction.
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log/flags"
)

// A single log event. Msg is a format string when Args is non-empty.
type LogEntry struct {
	Time  time.Time
	Flags flags.Flag
	Msg   string
	Args  []interface{}
}

func (e LogEntry) String() string {
	if len(e.Args) == 0 {
		return e.Msg
	}
	return fmt.Sprintf(e.Msg, e.Args...)
}

// StackableLogger is one element of the logger stack. AddEntry must forward
// the entry to Next() if that is non-nil.
type StackableLogger interface {
	AddEntry(e LogEntry)
	ForwardTo(sl StackableLogger)
	Next() StackableLogger
	Ident() string
	Finalize()
}

var (
	logStackMtx sync.Mutex
	logStack    StackableLogger = &memLog{}
	prefix      string
)

// FailAction defines the behavior of Fatalf after the entry has been logged.
// Pre, if set, runs before the entry is logged; Terminator runs after and is
// expected not to return.
type FailAction struct {
	MsgPfx     string
	Pre        func(f string, va ...interface{})
	Terminator func()
}

var DefaultFatal = FailAction{
	MsgPfx:     "FATAL: ",
	Terminator: func() { os.Exit(1) },
}

var fatalAction = DefaultFatal

func SetFatalAction(fa FailAction) {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	fatalAction = fa
}

// Prefix identifies the current stage (e.g. "recovery") in fatal messages and
// external reports.
func SetPrefix(p string) { prefix = p }
func GetPrefix() string  { return prefix }

var EDupIdent = fmt.Errorf("logger with duplicate ident in stack")

// Adds a logger to the stack. With front=true the logger becomes the new
// head, otherwise it is appended at the tail. Idents must be unique.
func AddLogger(sl StackableLogger, front bool) error {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	for l := logStack; l != nil; l = l.Next() {
		if l.Ident() == sl.Ident() {
			return EDupIdent
		}
	}
	if front {
		sl.ForwardTo(logStack)
		logStack = sl
		return nil
	}
	l := logStack
	for l.Next() != nil {
		l = l.Next()
	}
	l.ForwardTo(sl)
	return nil
}

// Removes the logger with the given ident, relinking the stack around it.
// No-op if absent.
func RemoveLogger(ident string) {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	if logStack == nil {
		return
	}
	if logStack.Ident() == ident {
		logStack = logStack.Next()
		if logStack == nil {
			logStack = &memLog{}
		}
		return
	}
	prev := logStack
	for l := prev.Next(); l != nil; l = l.Next() {
		if l.Ident() == ident {
			prev.ForwardTo(nil)
			prev.ForwardTo(l.Next())
			return
		}
		prev = l
	}
}

// FindInStack must be called with logStackMtx held or from a context where
// the stack cannot change.
func FindInStack(ident string) StackableLogger {
	for l := logStack; l != nil; l = l.Next() {
		if l.Ident() == ident {
			return l
		}
	}
	return nil
}

func InStack(ident string) bool {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	return FindInStack(ident) != nil
}

// Replace the entire stack with the given logger. Used by testlog.
func NewLogStack(sl StackableLogger) {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	logStack = sl
}

// Reset to the default stack (a lone memLog).
func DefaultLogStack() {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	logStack = &memLog{}
}

// Finalize flushes and shuts down every logger in the stack. Call before the
// final reboot so buffered file-log lines reach disk.
func Finalize() {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	logStack.Finalize()
}

type helperer interface{ Helper() }

var traceHelper helperer

// TraceHelper marks logging funcs as test helpers so entries are attributed
// to the caller in 'go test' output.
func TraceHelper(h helperer) { traceHelper = h }

func addEntry(fl flags.Flag, f string, va ...interface{}) {
	if traceHelper != nil {
		traceHelper.Helper()
	}
	e := LogEntry{
		Time:  time.Now(),
		Flags: fl,
		Msg:   f,
		Args:  va,
	}
	logStackMtx.Lock()
	sl := logStack
	logStackMtx.Unlock()
	sl.AddEntry(e)
}

// Logf records detail not normally shown to the end user.
func Logf(f string, va ...interface{}) { addEntry(flags.NA, f, va...) }

// Log records a preformatted detail string.
func Log(msg string) { addEntry(flags.NA, "%s", msg) }

// Logln records its args a la fmt.Sprintln.
func Logln(va ...interface{}) {
	addEntry(flags.NA, "%s", strings.TrimSuffix(fmt.Sprintln(va...), "\n"))
}

// Msg records a message also destined for the end user's screen.
func Msg(msg string) { addEntry(flags.EndUser, "%s", msg) }

func Msgf(f string, va ...interface{}) { addEntry(flags.EndUser, f, va...) }

// Fatalf logs and then executes the configured FailAction. Does not return
// in production, where the terminator reboots.
func Fatalf(f string, va ...interface{}) {
	logStackMtx.Lock()
	fa := fatalAction
	logStackMtx.Unlock()
	if fa.Pre != nil {
		fa.Pre(f, va...)
	}
	addEntry(flags.Fatal, fa.MsgPfx+f, va...)
	fa.Terminator()
}
