// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package wipe

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log/testlog"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/logs"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/ui"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/vol"
)

// fakeFmt simulates mkfs by recreating the volume's backing dir empty.
type fakeFmt struct {
	root      string
	formatted []string
	fail      bool
}

func (f *fakeFmt) Format(v *vol.Volume) error {
	f.formatted = append(f.formatted, v.MountPoint)
	if f.fail {
		return os.ErrInvalid
	}
	dir := filepath.Join(f.root, v.MountPoint)
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

func noMount(dev, dir, typ, data string, flags uintptr) error { return nil }
func noUnmount(dir string, force, lazy bool) error            { return nil }

func testEngine(t *testing.T) (*Engine, *fakeFmt, string) {
	t.Helper()
	root := t.TempDir()
	table := vol.NewTable(
		&vol.Volume{MountPoint: "/data", Device: "/dev/block/data", FsType: "ext4", Wipe: true},
		&vol.Volume{MountPoint: "/cache", Device: "/dev/block/cache", FsType: "ext4", Wipe: true},
		&vol.Volume{MountPoint: "/system", Device: "/dev/block/system", FsType: "ext4"},
	)
	table.Mounter = noMount
	table.Unmounter = noUnmount
	fmtr := &fakeFmt{root: root}
	stub := ui.NewStub()
	tmpLog := filepath.Join(root, "recovery.log")
	if err := os.WriteFile(tmpLog, []byte("live log\n"), 0644); err != nil {
		t.Fatal(err)
	}
	e := &Engine{
		Vols: table,
		Fmt:  fmtr,
		Logs: &logs.Manager{
			TmpLog:     tmpLog,
			TmpInstall: filepath.Join(root, "last_install"),
			CacheDir:   filepath.Join(root, "cache", "recovery"),
			Vols:       table,
		},
		UI:  stub,
		Dev: ui.NewDevice(stub),
	}
	return e, fmtr, root
}

//func (e *Engine) EraseVolume
func TestEraseCachePreservesLogs(t *testing.T) {
	tlog := testlog.NewTestLogNoBG(t)
	defer tlog.Freeze()

	e, _, _ := testEngine(t)
	if err := os.MkdirAll(e.Logs.CacheDir, 0755); err != nil {
		t.Fatal(err)
	}
	lastLog := filepath.Join(e.Logs.CacheDir, "last_log.1")
	if err := os.WriteFile(lastLog, []byte("previous boot\n"), 0644); err != nil {
		t.Fatal(err)
	}
	//everything named last_* rides along, not just the logs
	lastInstall := filepath.Join(e.Logs.CacheDir, "last_install")
	if err := os.WriteFile(lastInstall, []byte("/cache/u.zip\n0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	lastLocale := filepath.Join(e.Logs.CacheDir, "last_locale")
	if err := os.WriteFile(lastLocale, []byte("en-US"), 0644); err != nil {
		t.Fatal(err)
	}
	//non-log data on cache must not survive
	junk := filepath.Join(e.Logs.CacheDir, "dalvik-junk")
	if err := os.WriteFile(junk, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := e.EraseVolume("/cache"); err != nil {
		t.Fatal(err)
	}

	//the post-format copy rotates the restored history one step deeper
	buf, err := os.ReadFile(filepath.Join(e.Logs.CacheDir, "last_log.2"))
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "previous boot\n" {
		t.Errorf("last_log.2 %q", buf)
	}
	if _, err = os.Stat(junk); !os.IsNotExist(err) {
		t.Error("non-log file survived the format")
	}
	buf, err = os.ReadFile(lastInstall)
	if err != nil || string(buf) != "/cache/u.zip\n0\n" {
		t.Errorf("last_install %q (%v)", buf, err)
	}
	buf, err = os.ReadFile(lastLocale)
	if err != nil || string(buf) != "en-US" {
		t.Errorf("last_locale %q (%v)", buf, err)
	}
	//the live log restarts the cumulative log from scratch
	buf, err = os.ReadFile(filepath.Join(e.Logs.CacheDir, "log"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf, []byte("live log\n")) {
		t.Errorf("cumulative log %q", buf)
	}
}

//func (e *Engine) EraseVolume
func TestEraseCacheTruncatesLargeLogs(t *testing.T) {
	tlog := testlog.NewTestLogNoBG(t)
	defer tlog.Freeze()

	e, _, _ := testEngine(t)
	if err := os.MkdirAll(e.Logs.CacheDir, 0755); err != nil {
		t.Fatal(err)
	}
	big := make([]byte, logSnapshotMax+1000)
	for i := range big {
		big[i] = 'a'
	}
	copy(big, "head\n")
	lastLog := filepath.Join(e.Logs.CacheDir, "last_log.1")
	if err := os.WriteFile(lastLog, big, 0644); err != nil {
		t.Fatal(err)
	}

	if err := e.EraseVolume("/cache"); err != nil {
		t.Fatal(err)
	}

	//rotated to .2 by the post-format copy
	rotated := filepath.Join(e.Logs.CacheDir, "last_log.2")
	fi, err := os.Stat(rotated)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != logSnapshotMax {
		t.Errorf("size %d, want %d", fi.Size(), logSnapshotMax)
	}
	buf, err := os.ReadFile(rotated)
	if err != nil {
		t.Fatal(err)
	}
	//the head survives, not the tail
	if !bytes.HasPrefix(buf, []byte("head\n")) {
		t.Error("log head lost")
	}
}

type fmtFunc func(*vol.Volume) error

func (f fmtFunc) Format(v *vol.Volume) error { return f(v) }

//func (e *Engine) EraseVolume
func TestEraseDataConvertFbe(t *testing.T) {
	tlog := testlog.NewTestLogNoBG(t)
	defer tlog.Freeze()

	e, _, root := testEngine(t)
	e.Reason = "convert_fbe"
	e.FbeDir = filepath.Join(root, "convert_fbe")
	marker := filepath.Join(e.FbeDir, "convert_fbe")

	seen := false
	e.Fmt = fmtFunc(func(v *vol.Volume) error {
		_, err := os.Stat(marker)
		seen = err == nil
		return nil
	})
	if err := e.EraseVolume("/data"); err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Error("breadcrumb absent while formatting")
	}
	if _, err := os.Stat(e.FbeDir); !os.IsNotExist(err) {
		t.Error("breadcrumb survived the erase")
	}
}

//func (e *Engine) WipeData
func TestWipeData(t *testing.T) {
	tlog := testlog.NewTestLogNoBG(t)
	defer tlog.Freeze()

	e, fmtr, _ := testEngine(t)
	if !e.WipeData() {
		t.Fatal("wipe failed")
	}
	if len(fmtr.formatted) != 2 {
		t.Fatalf("formatted %v", fmtr.formatted)
	}
	if fmtr.formatted[0] != "/data" || fmtr.formatted[1] != "/cache" {
		t.Errorf("order %v", fmtr.formatted)
	}
}

//func (e *Engine) WipeData
func TestWipeDataFormatFails(t *testing.T) {
	tlog := testlog.NewTestLogNoBG(t)
	defer tlog.Freeze()

	e, fmtr, _ := testEngine(t)
	fmtr.fail = true
	if e.WipeData() {
		t.Fatal("wipe reported success despite format failure")
	}
}

//func (e *Engine) WipeSystem
func TestWipeSystem(t *testing.T) {
	tlog := testlog.NewTestLogNoBG(t)
	defer tlog.Freeze()

	e, fmtr, _ := testEngine(t)
	if !e.WipeSystem() {
		t.Fatal("wipe failed")
	}
	if len(fmtr.formatted) != 1 || fmtr.formatted[0] != "/system" {
		t.Errorf("formatted %v", fmtr.formatted)
	}
}

//func (e *Engine) WipeSystem
func TestWipeSystemFormatFails(t *testing.T) {
	tlog := testlog.NewTestLogNoBG(t)
	defer tlog.Freeze()

	e, fmtr, _ := testEngine(t)
	fmtr.fail = true
	if e.WipeSystem() {
		t.Fatal("wipe reported success despite format failure")
	}
}

//func (e *Engine) WipeCache
func TestWipeCacheNoCacheVolume(t *testing.T) {
	tlog := testlog.NewTestLogNoBG(t)
	defer tlog.Freeze()

	e, _, _ := testEngine(t)
	e.Vols = vol.NewTable(
		&vol.Volume{MountPoint: "/data", Device: "/dev/block/data", FsType: "ext4", Wipe: true},
	)
	if e.WipeCache() {
		t.Fatal("cache wipe succeeded without a cache volume")
	}
}
