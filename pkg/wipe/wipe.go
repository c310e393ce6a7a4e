// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package wipe erases volumes and raw partitions. Erasing the cache volume is
// special: the logs living there must survive, so their tails are held in
// memory across the format and written back afterward.
package wipe

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/logs"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/ui"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/vol"
)

// logSnapshotMax caps how much of each preserved log file is carried across a
// cache format. The head is kept; it holds the boot that started the trouble.
const logSnapshotMax = 1 << 19

// Engine performs wipes. All collaborators are injected; tests substitute
// fakes for the pieces that touch hardware.
type Engine struct {
	Vols *vol.Table
	Fmt  vol.Formatter
	Logs *logs.Manager
	UI   ui.UI
	Dev  ui.Device

	// Serial and Product gate wipe packages to the device they were
	// built for.
	Serial  string
	Product string
	// Reason is the boot reason driving this session; "convert_fbe" on a
	// data wipe leaves a breadcrumb for the booted system.
	Reason string
	// FbeDir overrides where the convert_fbe breadcrumb goes.
	FbeDir string
	// TrustedKeys verify wipe package signatures.
	TrustedKeys [][]byte

	// OpenBlk is the block-device hook; defaults to the ioctl-driven
	// implementation.
	OpenBlk func(dev string) (blkOps, error)
}

func (e *Engine) openBlk(dev string) (blkOps, error) {
	if e.OpenBlk != nil {
		return e.OpenBlk(dev)
	}
	return openBlk(dev)
}

// preserved file names within the cache recovery dir: the cumulative log and
// everything saved from prior boots (last_log*, last_kmsg*, last_install,
// last_locale)
func isPreservedLog(name string) bool {
	return name == "log" || strings.HasPrefix(name, "last_")
}

// EraseVolume unmounts and reformats the volume at mountPoint. For the cache
// volume the preserved logs are snapshotted first and restored after.
func (e *Engine) EraseVolume(mountPoint string) error {
	e.Logs.SetModified()
	isCache := mountPoint == "/cache"
	var saved map[string][]byte
	if isCache {
		saved = e.snapshotLogs()
	}

	v, err := e.Vols.Lookup(mountPoint)
	if err != nil {
		log.Logf("erase %s: %s", mountPoint, err)
		return err
	}
	e.UI.Print("Formatting %s...\n", mountPoint)
	if err = e.Vols.EnsureUnmounted(mountPoint); err != nil {
		return err
	}

	fbe := mountPoint == "/data" && e.Reason == "convert_fbe"
	if fbe {
		if err = e.placeFbeMarker(); err != nil {
			log.Logf("convert_fbe marker: %s", err)
		}
	}
	err = e.Fmt.Format(v)
	if fbe {
		e.removeFbeMarker()
	}
	if err != nil {
		log.Logf("format %s: %s", mountPoint, err)
		return err
	}

	if isCache {
		e.restoreLogs(saved)
		// the cumulative log was just recreated from scratch
		e.Logs.ResetCarry()
		e.Logs.Copy()
	}
	return nil
}

// snapshotLogs reads the preserved files into memory, capped at
// logSnapshotMax each, before the filesystem under them is destroyed.
func (e *Engine) snapshotLogs() map[string][]byte {
	saved := make(map[string][]byte)
	dir := e.Logs.CacheDir
	ents, err := os.ReadDir(dir)
	if err != nil {
		return saved
	}
	for _, ent := range ents {
		if ent.IsDir() || !isPreservedLog(ent.Name()) {
			continue
		}
		p := filepath.Join(dir, ent.Name())
		buf, err := os.ReadFile(p)
		if err != nil {
			log.Logf("snapshot %s: %s", p, err)
			continue
		}
		if len(buf) > logSnapshotMax {
			buf = buf[:logSnapshotMax]
		}
		saved[ent.Name()] = buf
	}
	log.Logf("preserving %d log files across format", len(saved))
	return saved
}

func (e *Engine) fbeDir() string {
	if e.FbeDir != "" {
		return e.FbeDir
	}
	return "/tmp/convert_fbe"
}

// placeFbeMarker leaves the breadcrumb that tells the booted system to switch
// to file based encryption on its first mount of the fresh data volume.
func (e *Engine) placeFbeMarker() error {
	dir := e.fbeDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "convert_fbe"), nil, 0600)
}

func (e *Engine) removeFbeMarker() {
	dir := e.fbeDir()
	if err := os.Remove(filepath.Join(dir, "convert_fbe")); err != nil {
		log.Logf("remove convert_fbe marker: %s", err)
	}
	if err := os.Remove(dir); err != nil {
		log.Logf("remove %s: %s", dir, err)
	}
}

func (e *Engine) restoreLogs(saved map[string][]byte) {
	dir := e.Logs.CacheDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Logf("recreate %s: %s", dir, err)
		return
	}
	for name, buf := range saved {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, buf, 0600); err != nil {
			log.Logf("restore %s: %s", p, err)
		}
	}
}

// WipeData performs a factory reset: user data, cache, and metadata when the
// device has a metadata volume. Device hooks bracket the operation.
func (e *Engine) WipeData() bool {
	e.UI.Print("\n-- Wiping data...\n")
	e.UI.SetBackground(ui.BackgroundErasing)

	ok := e.Dev.PreWipeData()
	if ok {
		ok = e.EraseVolume("/data") == nil
	}
	if ok {
		ok = e.EraseVolume("/cache") == nil
	}
	if ok {
		if _, err := e.Vols.Lookup("/metadata"); err == nil {
			ok = e.EraseVolume("/metadata") == nil
		}
	}
	if ok {
		ok = e.Dev.PostWipeData()
	}
	if ok {
		e.UI.Print("Data wipe complete.\n")
	} else {
		e.UI.Print("Data wipe failed.\n")
	}
	return ok
}

// WipeSystem erases the system volume, leaving the device unbootable until a
// new image is installed.
func (e *Engine) WipeSystem() bool {
	e.UI.Print("\n-- Wiping system...\n")
	e.UI.SetBackground(ui.BackgroundErasing)
	ok := e.EraseVolume("/system") == nil
	if ok {
		e.UI.Print("System wipe complete.\n")
	} else {
		e.UI.Print("System wipe failed.\n")
	}
	return ok
}

// WipeCache erases the cache volume. Fails on devices without one.
func (e *Engine) WipeCache() bool {
	if !e.Vols.HasCache() {
		e.UI.Print("No /cache partition found.\n")
		return false
	}
	e.UI.Print("\n-- Wiping cache...\n")
	e.UI.SetBackground(ui.BackgroundErasing)
	ok := e.EraseVolume("/cache") == nil
	if ok {
		e.UI.Print("Cache wipe complete.\n")
	} else {
		e.UI.Print("Cache wipe failed.\n")
	}
	return ok
}
