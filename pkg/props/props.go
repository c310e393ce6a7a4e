// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package props exposes the boot properties the bootloader passes on the
// kernel command line (androidboot.*): serial number, product name, boot
// reason, quiescent flag. The main system's property service does not run
// here, so the cmdline is the only source of truth.
package props

import (
	"os"
	"strings"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"

	"github.com/google/shlex"
)

const cmdlinePfx = "androidboot."

type Props struct {
	vals map[string]string
}

// Load reads /proc/cmdline. A read failure yields an empty property set;
// callers see defaults.
func Load() *Props {
	data, err := os.ReadFile("/proc/cmdline")
	if err != nil {
		log.Logf("reading /proc/cmdline: %s", err)
		return &Props{vals: map[string]string{}}
	}
	return FromCmdline(string(data))
}

// FromCmdline parses androidboot.key=value tokens out of a kernel command
// line. Values may be quoted; shlex handles the splitting.
func FromCmdline(cmdline string) *Props {
	p := &Props{vals: map[string]string{}}
	tokens, err := shlex.Split(strings.TrimSpace(cmdline))
	if err != nil {
		log.Logf("parsing cmdline: %s", err)
		return p
	}
	for _, tok := range tokens {
		if !strings.HasPrefix(tok, cmdlinePfx) {
			continue
		}
		kv := strings.SplitN(strings.TrimPrefix(tok, cmdlinePfx), "=", 2)
		if len(kv) != 2 {
			continue
		}
		p.vals[kv[0]] = kv[1]
	}
	return p
}

// Get returns the value for key (without the androidboot. prefix), or def if
// the bootloader did not pass it.
func (p *Props) Get(key, def string) string {
	if v, ok := p.vals[key]; ok {
		return v
	}
	return def
}

func (p *Props) GetBool(key string, def bool) bool {
	v, ok := p.vals[key]
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	case "0", "false", "off", "no":
		return false
	}
	return def
}

// Set overrides a property. Tests and the argument resolver (which learns the
// session reason from its flags) use this.
func (p *Props) Set(key, val string) { p.vals[key] = val }

func (p *Props) Serial() string     { return p.Get("serialno", "") }
func (p *Props) Product() string    { return p.Get("product", "") }
func (p *Props) BootReason() string { return p.Get("bootreason", "") }
func (p *Props) Quiescent() bool    { return p.GetBool("quiescent", false) }
