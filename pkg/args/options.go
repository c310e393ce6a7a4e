// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package args

import (
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"

	flag "github.com/spf13/pflag"
)

// Options is the parsed boot command. Zero value means an interactive boot
// with no pending operation.
type Options struct {
	UpdatePackage      string
	RetryCount         int
	WipeData           bool
	PromptAndWipeData  bool
	WipeCache          bool
	WipeAB             bool
	WipePackageSize    int64
	ShowText           bool
	Sideload           bool
	SideloadAutoReboot bool
	JustExit           bool
	ShutdownAfter      bool
	Security           bool
	Locale             string
	Reason             string
}

// Parse decodes args. Unknown flags are logged and skipped rather than
// rejected; a newer bootloader may pass flags this build does not know.
func Parse(args []string) *Options {
	o := &Options{}
	fs := flag.NewFlagSet("recovery", flag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true

	fs.StringVar(&o.UpdatePackage, "update_package", "", "install the named package")
	fs.IntVar(&o.RetryCount, "retry_count", 0, "install attempts so far")
	fs.BoolVar(&o.WipeData, "wipe_data", false, "erase user data and cache")
	fs.BoolVar(&o.PromptAndWipeData, "prompt_and_wipe_data", false, "confirm, then erase user data")
	fs.BoolVar(&o.WipeCache, "wipe_cache", false, "erase cache")
	fs.BoolVar(&o.WipeAB, "wipe_ab", false, "wipe the partitions named by a wipe package")
	fs.Int64Var(&o.WipePackageSize, "wipe_package_size", 0, "size of the wipe package on the misc device")
	fs.BoolVar(&o.ShowText, "show_text", false, "start with the text UI visible")
	fs.BoolVar(&o.Sideload, "sideload", false, "wait for a sideloaded package")
	fs.BoolVar(&o.SideloadAutoReboot, "sideload_auto_reboot", false, "sideload, then reboot without pausing")
	fs.BoolVar(&o.JustExit, "just_exit", false, "clean up and reboot immediately")
	fs.BoolVar(&o.ShutdownAfter, "shutdown_after", false, "power off instead of rebooting")
	fs.BoolVar(&o.Security, "security", false, "treat signature failures as fatal")
	fs.StringVar(&o.Locale, "locale", "", "UI locale")
	fs.StringVar(&o.Reason, "reason", "", "why recovery was entered")

	if err := fs.Parse(args); err != nil {
		log.Logf("parse boot command %v: %s", args, err)
	}
	for _, a := range fs.Args() {
		log.Logf("ignoring unexpected argument %q", a)
	}
	// sideload_auto_reboot implies sideload
	if o.SideloadAutoReboot {
		o.Sideload = true
	}
	return o
}
