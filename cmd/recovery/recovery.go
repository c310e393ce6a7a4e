// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Command recovery is the boot-time recovery console. The bootloader starts
// it with a command in the control block or on the kernel command line; it
// runs that command, preserves its logs, and reboots. See
// github.com/RickyBobby2nd/android-bootable-recovery/pkg/session for the
// orchestration.
package main

import (
	"os"
	"time"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/args"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/bcb"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/fileutil"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/gate"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/hw/kmsg"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/hw/power"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/install"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log/flags"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/logs"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/props"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/session"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/ui"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/vol"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/wipe"
)

//in any binary with main.buildId string, it is set at compile time to $BUILD_INFO
var buildId string

const (
	miscDev     = "/dev/block/by-name/misc"
	cacheDir    = "/cache/recovery"
	commandFile = "/cache/recovery/command"
	localeFile  = "/cache/recovery/last_locale"
	tmpLog      = "/tmp/recovery.log"
	tmpInstall  = "/tmp/last_install"
	wipeList    = "/etc/recovery.wipe"
	keysFile    = "/res/keys"
	sideloadDir = "/tmp/sideload"
	batteryDir  = "/sys/class/power_supply/battery"
	pmsgDev     = "/dev/pmsg0"
)

func volumes() *vol.Table {
	return vol.NewTable(
		&vol.Volume{MountPoint: "/cache", Device: "/dev/block/by-name/cache", FsType: "ext4", Wipe: true},
		&vol.Volume{MountPoint: "/data", Device: "/dev/block/by-name/userdata", FsType: "ext4", Wipe: true},
		&vol.Volume{MountPoint: "/metadata", Device: "/dev/block/by-name/metadata", FsType: "ext4", Wipe: true},
		&vol.Volume{MountPoint: "/system", Device: "/dev/block/by-name/system", FsType: "ext4"},
	)
}

func main() {
	log.AddConsoleLog(flags.NA)
	if _, err := log.AddFileLog("/tmp"); err != nil {
		// the log stack is degraded; the ring buffer still gets it
		kmsg.Printf("file log: %s", err)
	}
	if err := logs.AddPmsgMirror(pmsgDev); err != nil {
		log.Logf("pmsg mirror: %s", err)
	}
	// milestones for the kernel ring buffer, where they survive a hang
	km := kmsg.NewKmsgPrio(kmsg.FacLocal0, kmsg.SevNotice, "recovery")
	km.Logf("console starting, buildId %s", buildId)

	pr := props.Load()
	table := volumes()
	// device nodes can lag behind at early boot
	if !fileutil.WaitFor(miscDev, 5*time.Second) {
		log.Logf("%s did not appear; the control block will read empty", miscDev)
	}
	store := &bcb.Store{Path: miscDev}
	lm := &logs.Manager{
		TmpLog:     tmpLog,
		TmpInstall: tmpInstall,
		CacheDir:   cacheDir,
		Vols:       table,
	}

	var u ui.UI
	if pr.Quiescent() {
		u = ui.NewStub()
	} else {
		u = ui.NewText(os.Stdout, os.Stdin)
	}
	dev := ui.NewDevice(u)

	s := &session.Session{
		Resolver: &args.Resolver{
			BCB:         store,
			CommandFile: commandFile,
			Vols:        table,
		},
		BCB:  store,
		Vols: table,
		Logs: lm,
		Wipe: &wipe.Engine{
			Vols:        table,
			Fmt:         &mkfs{},
			Logs:        lm,
			UI:          u,
			Dev:         dev,
			Serial:      pr.Serial(),
			Product:     pr.Product(),
			TrustedKeys: trustedKeys(keysFile),
		},
		Inst:        &rejectInstaller{},
		Side:        &install.Sideloader{Dir: sideloadDir},
		Dev:         dev,
		Health:      &gate.SysfsHealth{Dir: batteryDir},
		Props:       pr,
		CommandFile: commandFile,
		LocaleFile:  localeFile,
		WipeList:    wipeList,
		MiscDev:     miscDev,
		Battery:     session.BatteryWait{Interval: time.Second, Polls: 10},
	}

	power.Preboots.Add(func(success bool) {
		s.Finalize(success)
	})

	quiescent := pr.Quiescent()
	after := s.Run(os.Args)
	km.Logf("session complete, handing the device back")
	switch after {
	case session.AfterShutdown:
		log.Msgf("Powering off...")
		power.Off()
	case session.AfterRebootBootloader:
		log.Msgf("Rebooting to bootloader...")
		power.RebootTarget(rebootArg("bootloader", quiescent))
	case session.AfterRebootRecovery:
		log.Msgf("Rebooting to recovery...")
		power.RebootTarget(rebootArg("recovery", quiescent))
	default:
		log.Msgf("Rebooting...")
		if quiescent {
			// a boot that ran dark hands a dark boot to the system
			power.RebootTarget(rebootArg("", quiescent))
		} else {
			power.Reboot(true)
		}
	}
}
