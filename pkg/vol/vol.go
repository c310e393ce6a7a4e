// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package vol tracks the mountable volumes the recovery console works with
// and their mount state. The table is small and fixed at boot; entries map a
// mount point to a block device and filesystem type.
package vol

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"

	"github.com/u-root/u-root/pkg/mount"
)

var (
	ENoVol   = errors.New("no such volume")
	ENoCache = errors.New("no cache volume")
)

// Volume is one entry in the fstab-equivalent table.
type Volume struct {
	MountPoint string
	Device     string
	FsType     string
	// Wipe marks the volume as one the wipe engine may erase.
	Wipe bool

	mounted bool
}

// Formatter creates a fresh filesystem on a volume's device. Split out so the
// wipe engine is testable without mkfs binaries present.
type Formatter interface {
	Format(v *Volume) error
}

// Table holds the volume set, keyed by mount point.
type Table struct {
	mtx  sync.Mutex
	vols map[string]*Volume

	// Mounter/Unmounter are overridable for tests; defaults drive the
	// kernel via mount(2)/umount(2).
	Mounter   func(dev, dir, typ, data string, flags uintptr) error
	Unmounter func(dir string, force, lazy bool) error
}

func NewTable(vols ...*Volume) *Table {
	t := &Table{
		vols:      make(map[string]*Volume),
		Mounter:   mount.Mount,
		Unmounter: mount.Unmount,
	}
	for _, v := range vols {
		t.vols[v.MountPoint] = v
	}
	return t
}

// ForPath returns the volume whose mount point is a prefix of path.
func (t *Table) ForPath(path string) *Volume {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	var best *Volume
	for mp, v := range t.vols {
		if path == mp || strings.HasPrefix(path, mp+"/") {
			if best == nil || len(mp) > len(best.MountPoint) {
				best = v
			}
		}
	}
	return best
}

// HasCache reports whether a /cache volume exists. Devices without one keep
// their command file and logs elsewhere and cannot wipe cache.
func (t *Table) HasCache() bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	_, ok := t.vols["/cache"]
	return ok
}

// Volumes returns the wipeable entries, for the wipe engine.
func (t *Table) Wipeable() []*Volume {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	var out []*Volume
	for _, v := range t.vols {
		if v.Wipe {
			out = append(out, v)
		}
	}
	return out
}

// EnsureMounted mounts the volume owning path if it is not already mounted.
// Paths outside any volume (ramdisk paths like /tmp) succeed without action.
func (t *Table) EnsureMounted(path string) error {
	v := t.ForPath(path)
	if v == nil {
		return nil
	}
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if v.mounted {
		return nil
	}
	if err := os.MkdirAll(v.MountPoint, 0755); err != nil {
		return err
	}
	err := t.Mounter(v.Device, v.MountPoint, v.FsType, "", 0)
	if err != nil {
		log.Logf("mount %s on %s: %s", v.Device, v.MountPoint, err)
		return err
	}
	v.mounted = true
	return nil
}

// EnsureUnmounted unmounts the volume owning path. The wipe engine requires
// this before erasing a device out from under the filesystem.
func (t *Table) EnsureUnmounted(path string) error {
	v := t.ForPath(path)
	if v == nil {
		return nil
	}
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if !v.mounted {
		return nil
	}
	err := t.Unmounter(v.MountPoint, false, false)
	if err != nil {
		log.Logf("unmount %s: %s", v.MountPoint, err)
		return err
	}
	v.mounted = false
	return nil
}

// Lookup finds a volume by exact mount point.
func (t *Table) Lookup(mountPoint string) (*Volume, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	v, ok := t.vols[mountPoint]
	if !ok {
		return nil, ENoVol
	}
	return v, nil
}

// Manager abstracts removable media for sideload. The stub implementation
// covers devices without an sdcard slot.
type Manager interface {
	// MountRemovable makes removable media visible, returning its mount
	// point, and blocks until media is present or ctx-style cancellation
	// via the done channel.
	MountRemovable(done <-chan struct{}) (string, error)
	UnmountRemovable() error
}
