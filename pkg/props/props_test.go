// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package props

import (
	"testing"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log/testlog"
)

func TestFromCmdline(t *testing.T) {
	tlog := testlog.NewTestLogNoBG(t)
	defer tlog.Freeze()
	cl := `console=ttyMSM0,115200n8 androidboot.serialno=0A1B2C3D androidboot.product=walleye ` +
		`androidboot.bootreason=kernel_panic androidboot.quiescent=1 loop.max_part=7`
	p := FromCmdline(cl)
	if got := p.Serial(); got != "0A1B2C3D" {
		t.Errorf("serial: got %s", got)
	}
	if got := p.Product(); got != "walleye" {
		t.Errorf("product: got %s", got)
	}
	if got := p.BootReason(); got != "kernel_panic" {
		t.Errorf("bootreason: got %s", got)
	}
	if !p.Quiescent() {
		t.Error("quiescent: want true")
	}
	if got := p.Get("missing", "dflt"); got != "dflt" {
		t.Errorf("default: got %s", got)
	}
}

func TestFromCmdlineEmpty(t *testing.T) {
	tlog := testlog.NewTestLogNoBG(t)
	defer tlog.Freeze()
	p := FromCmdline("")
	if got := p.BootReason(); got != "" {
		t.Errorf("got %s, want empty", got)
	}
	if p.Quiescent() {
		t.Error("quiescent: want false")
	}
}
