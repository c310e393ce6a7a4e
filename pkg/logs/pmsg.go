// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package logs

import (
	"fmt"
	"os"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"
)

const PmsgIdent = "pmsg"

// pmsgLog mirrors every entry into the persistent message device, which the
// kernel preserves across a warm reboot. A device without pmsg support simply
// gets no mirror.
type pmsgLog struct {
	f    *os.File
	next log.StackableLogger
}

var _ log.StackableLogger = (*pmsgLog)(nil)

var mirror *pmsgLog

// AddPmsgMirror attaches a mirror writing to dev (normally /dev/pmsg0) to the
// current log stack.
func AddPmsgMirror(dev string) error {
	f, err := os.OpenFile(dev, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	p := &pmsgLog{f: f}
	if err = log.AddLogger(p, false); err != nil {
		f.Close()
		return err
	}
	mirror = p
	return nil
}

// mirrorToPmsg copies a small file into the pmsg store verbatim. For files
// written outside the log stack, like the install summary.
func mirrorToPmsg(path string) {
	if mirror == nil {
		return
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return
	}
	mirror.f.Write(buf)
}

func (p *pmsgLog) AddEntry(e log.LogEntry) {
	fmt.Fprintf(p.f, "%s\n", e.String())
	if p.next != nil {
		p.next.AddEntry(e)
	}
}

func (p *pmsgLog) ForwardTo(sl log.StackableLogger) {
	if p.next != nil && sl != nil {
		panic("next already set")
	}
	p.next = sl
}

func (p *pmsgLog) Next() log.StackableLogger { return p.next }

func (p *pmsgLog) Ident() string { return PmsgIdent }

func (p *pmsgLog) Finalize() {
	p.f.Close()
	if p.next != nil {
		p.next.Finalize()
	}
}
