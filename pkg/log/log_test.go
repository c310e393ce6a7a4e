// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log/flags"
)

// collector is a minimal stackable logger for stack manipulation tests.
type collector struct {
	ident   string
	entries []LogEntry
	next    StackableLogger
}

func (c *collector) AddEntry(e LogEntry) {
	c.entries = append(c.entries, e)
	if c.next != nil {
		c.next.AddEntry(e)
	}
}

func (c *collector) ForwardTo(sl StackableLogger) {
	if c.next != nil && sl != nil {
		panic("next already set")
	}
	c.next = sl
}

func (c *collector) Next() StackableLogger { return c.next }
func (c *collector) Ident() string         { return c.ident }
func (c *collector) Finalize()             {}

var _ StackableLogger = (*collector)(nil)

//func AddLogger, RemoveLogger
func TestStackOrder(t *testing.T) {
	DefaultLogStack()
	defer DefaultLogStack()

	a := &collector{ident: "a"}
	b := &collector{ident: "b"}
	if err := AddLogger(a, false); err != nil {
		t.Fatal(err)
	}
	if err := AddLogger(b, true); err != nil {
		t.Fatal(err)
	}
	//b is the head now, memLog the middle, a the tail
	if !InStack("a") || !InStack("b") || !InStack(MemLogIdent) {
		t.Error("stack incomplete")
	}
	if err := AddLogger(&collector{ident: "a"}, false); err != EDupIdent {
		t.Errorf("err %v", err)
	}

	Logf("hello %d", 1)
	for _, c := range []*collector{a, b} {
		if len(c.entries) != 1 || c.entries[0].String() != "hello 1" {
			t.Errorf("%s: %#v", c.ident, c.entries)
		}
	}

	RemoveLogger("b")
	if InStack("b") {
		t.Error("b still in stack")
	}
	Logf("second")
	if len(a.entries) != 2 {
		t.Errorf("%#v", a.entries)
	}
	if len(b.entries) != 1 {
		t.Errorf("removed logger still receives entries: %#v", b.entries)
	}
}

//func RemoveLogger
func TestRemoveLastLogger(t *testing.T) {
	DefaultLogStack()
	defer DefaultLogStack()

	//emptying the stack reinstalls a memLog so entries are never dropped
	RemoveLogger(MemLogIdent)
	Logf("still collected")
	ents := StoredEntries()
	if len(ents) != 1 {
		t.Fatalf("%#v", ents)
	}
}

//func AddFileLog
func TestFileLogReplay(t *testing.T) {
	DefaultLogStack()
	defer DefaultLogStack()

	//entries logged before the file log exists must end up in the file
	Logf("early entry")
	dir := t.TempDir()
	path, err := AddFileLog(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != LogName {
		t.Errorf("path %q", path)
	}
	Logf("late entry")
	SyncFileLog()

	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(buf)
	if !strings.Contains(out, "early entry") || !strings.Contains(out, "late entry") {
		t.Errorf("log content:\n%s", out)
	}
	if strings.Index(out, "early entry") > strings.Index(out, "late entry") {
		t.Error("replay out of order")
	}
	//lines carry a seconds-since-start stamp
	if !strings.HasPrefix(out, "[") {
		t.Errorf("unstamped line: %q", out)
	}
}

//func Fatalf
func TestFatalf(t *testing.T) {
	DefaultLogStack()
	defer DefaultLogStack()
	defer SetFatalAction(DefaultFatal)

	terminated := false
	SetFatalAction(FailAction{
		MsgPfx:     "ERROR: ",
		Terminator: func() { terminated = true },
	})
	Fatalf("broke: %s", "badly")
	if !terminated {
		t.Error("terminator did not run")
	}
	ents := StoredEntries()
	if len(ents) != 1 {
		t.Fatalf("%#v", ents)
	}
	if ents[0].String() != "ERROR: broke: badly" {
		t.Errorf("%q", ents[0].String())
	}
	if ents[0].Flags&flags.Fatal == 0 {
		t.Error("fatal entry not flagged")
	}
}
