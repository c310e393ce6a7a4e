// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package power handles poweroff- and reboot-related functionality, including
//running pre-reboot functions registered with Preboots.
//
//As a side-effect of import, log.Fatal is set to power.FailReboot.
//
//Every exit path here ends in a kernel reboot request followed by an
//indefinite pause: the recovery console never returns an exit status on its
//success path.
package power

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"

	"golang.org/x/sys/unix"
)

// Defines the action taken on failure, which is to reboot. Importing this
// package has the side effect of calling log.SetFatalAction() with this.
var FatalAction = log.FailAction{
	MsgPfx:     "ERROR, rebooting:",
	Terminator: FailReboot,
}

func init() {
	log.SetFatalAction(FatalAction)
}

//funcs to run immediately before reboot/shutdown
type PrebootList struct {
	fns []func(success bool)
}

var Preboots PrebootList

func (pl *PrebootList) Add(fn func(success bool)) { pl.fns = append(pl.fns, fn) }

func (pl *PrebootList) Perform(success bool) {
	for _, fn := range pl.fns {
		fn(success)
	}
}

//Reboot.
func FailReboot() {
	Reboot(false)
}

//Not for general use - prefer FailReboot() or a session-driven terminal action
func Reboot(success bool) {
	/* this func can be called from a defer statement; deferred functions
	   will execute even if panic() was called. exiting or rebooting will
	   mask any such panic, so check for it and log it
	*/
	x := recover()
	if x != nil {
		log.Logf("panic() caught in reboot(success=%t)", success)
		success = false
		log.Msgf("internal error: %s", x)
		stars := "***********************************************************"
		log.Logf("%s\nstack trace:\n%s\n%s", stars, debug.Stack(), stars)
	}

	Preboots.Perform(success)
	log.Finalize()
	testGuard()
	time.Sleep(2 * time.Second)
	err := unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART)
	if err != nil {
		fmt.Printf("%s", err)
	}
	Halt()
}

// RebootTarget requests a reboot into the named target (e.g. "bootloader",
// "recovery"), passed to the kernel via RESTART2. An empty target is a plain
// reboot.
func RebootTarget(target string) {
	Preboots.Perform(true)
	log.Finalize()
	testGuard()
	time.Sleep(2 * time.Second)
	var err error
	if target == "" {
		err = unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART)
	} else {
		err = restart2(target)
	}
	if err != nil {
		fmt.Printf("%s", err)
	}
	Halt()
}

func Off() {
	Preboots.Perform(true)
	log.Finalize()
	testGuard()
	time.Sleep(2 * time.Second)
	err := unix.Reboot(unix.LINUX_REBOOT_CMD_POWER_OFF)
	if err != nil {
		fmt.Printf("%s", err)
	}
	Halt()
}

// Halt blocks forever awaiting the kernel's reboot to actually happen.
func Halt() {
	for {
		unix.Pause()
	}
}

//outside pid 1 the reboot syscall would take down the host running the tests
func testGuard() {
	if os.Getpid() != 1 {
		fmt.Fprintf(os.Stderr, "pid 1 would reboot here\n")
		os.Exit(0)
	}
}
