// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package vol

import (
	"path/filepath"
	"testing"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log/testlog"
)

func testTable() (*Table, *[]string) {
	t := NewTable(
		&Volume{MountPoint: "/cache", Device: "/dev/block/cache", FsType: "ext4", Wipe: true},
		&Volume{MountPoint: "/data", Device: "/dev/block/data", FsType: "ext4", Wipe: true},
		&Volume{MountPoint: "/system", Device: "/dev/block/system", FsType: "ext4"},
	)
	var ops []string
	t.Mounter = func(dev, dir, typ, data string, flags uintptr) error {
		ops = append(ops, "mount "+dir)
		return nil
	}
	t.Unmounter = func(dir string, force, lazy bool) error {
		ops = append(ops, "umount "+dir)
		return nil
	}
	return t, &ops
}

//func (t *Table) ForPath
func TestForPath(t *testing.T) {
	table, _ := testTable()
	for path, want := range map[string]string{
		"/cache/recovery/command": "/cache",
		"/cache":                  "/cache",
		"/data/app":               "/data",
		"/cachefoo":               "",
		"/tmp/recovery.log":       "",
	} {
		v := table.ForPath(path)
		got := ""
		if v != nil {
			got = v.MountPoint
		}
		if got != want {
			t.Errorf("%s: got %q, want %q", path, got, want)
		}
	}
}

//func (t *Table) EnsureMounted, EnsureUnmounted
func TestMountOnce(t *testing.T) {
	tlog := testlog.NewTestLogNoBG(t)
	defer tlog.Freeze()

	mp := filepath.Join(t.TempDir(), "data")
	table := NewTable(&Volume{MountPoint: mp, Device: "/dev/block/data", FsType: "ext4"})
	var ops []string
	table.Mounter = func(dev, dir, typ, data string, flags uintptr) error {
		ops = append(ops, "mount "+dir)
		return nil
	}
	table.Unmounter = func(dir string, force, lazy bool) error {
		ops = append(ops, "umount "+dir)
		return nil
	}

	if err := table.EnsureMounted(filepath.Join(mp, "app")); err != nil {
		t.Fatal(err)
	}
	//already mounted: no second mount call
	if err := table.EnsureMounted(mp); err != nil {
		t.Fatal(err)
	}
	if err := table.EnsureUnmounted(mp); err != nil {
		t.Fatal(err)
	}
	//already unmounted
	if err := table.EnsureUnmounted(mp); err != nil {
		t.Fatal(err)
	}
	want := []string{"mount " + mp, "umount " + mp}
	if len(ops) != len(want) {
		t.Fatalf("ops %v", ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("op %d: %q != %q", i, ops[i], want[i])
		}
	}
}

//func (t *Table) EnsureMounted
func TestMountOutsideAnyVolume(t *testing.T) {
	tlog := testlog.NewTestLogNoBG(t)
	defer tlog.Freeze()

	table, ops := testTable()
	if err := table.EnsureMounted("/tmp/recovery.log"); err != nil {
		t.Fatal(err)
	}
	if len(*ops) != 0 {
		t.Errorf("ops %v", *ops)
	}
}

//func (t *Table) HasCache, Wipeable, Lookup
func TestTableQueries(t *testing.T) {
	table, _ := testTable()
	if !table.HasCache() {
		t.Error("cache volume not found")
	}
	if len(table.Wipeable()) != 2 {
		t.Errorf("wipeable %v", table.Wipeable())
	}
	if _, err := table.Lookup("/metadata"); err != ENoVol {
		t.Errorf("err %v", err)
	}
	v, err := table.Lookup("/system")
	if err != nil {
		t.Fatal(err)
	}
	if v.Wipe {
		t.Error("/system marked wipeable")
	}
}
