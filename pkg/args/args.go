// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package args resolves the boot command from its possible sources and keeps
// the durable copy in the control block current, so that a reboot mid-way
// through an operation restarts that operation rather than losing it.
package args

import (
	"fmt"
	"strings"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/bcb"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/fileutil"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/vol"
)

const retryFlag = "--retry_count="

// Resolver locates the boot command. Sources are consulted in fixed order:
// process arguments, then the control block, then the cache command file.
type Resolver struct {
	BCB         *bcb.Store
	CommandFile string
	Vols        *vol.Table
}

// Resolve returns the effective argument list, excluding the program name,
// and re-persists it to the control block. The returned list may be empty;
// that is not an error (the console falls through to its menu).
func (r *Resolver) Resolve(argv []string) []string {
	var args []string
	if len(argv) > 1 {
		args = argv[1:]
	}

	if len(args) == 0 {
		rec := r.BCB.Read()
		args = rec.Args()
		if len(args) > 0 {
			log.Logf("got %d arguments from control block", len(args))
		} else if rec.Command != "" || rec.Recovery != "" {
			// A malformed recovery field still means the bootloader
			// wanted us; note it before falling through.
			log.Logf("control block present but carries no arguments")
		}
	}

	if len(args) == 0 && r.CommandFile != "" {
		if err := r.Vols.EnsureMounted(r.CommandFile); err == nil {
			lines, err := fileutil.ReadLines(r.CommandFile)
			if err == nil && len(lines) > 0 {
				args = lines
				log.Logf("got %d arguments from %s", len(args), r.CommandFile)
			}
		}
	}

	// Persist whatever we resolved, including nothing. This both arms the
	// restart-on-interruption behavior and clears stale commands.
	if err := r.BCB.Write(args); err != nil {
		log.Logf("persist command: %s", err)
	}
	return args
}

// SetRetry rewrites the persisted command with an updated retry count so the
// next boot of an interrupted install knows how many attempts came before.
func (r *Resolver) SetRetry(args []string, count int) error {
	out := make([]string, 0, len(args)+1)
	found := false
	for _, a := range args {
		if strings.HasPrefix(a, retryFlag) {
			a = fmt.Sprintf("%s%d", retryFlag, count)
			found = true
		}
		out = append(out, a)
	}
	if !found {
		out = append(out, fmt.Sprintf("%s%d", retryFlag, count))
	}
	return r.BCB.Write(out)
}
