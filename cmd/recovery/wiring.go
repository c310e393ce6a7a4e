// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"os"
	"os/exec"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/fileutil"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/install"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/vol"
)

// mkfs formats volumes by running mke2fs. The binary ships in the recovery
// ramdisk.
type mkfs struct{}

var _ vol.Formatter = (*mkfs)(nil)

func (m *mkfs) Format(v *vol.Volume) error {
	cmd := exec.Command("mke2fs", "-F", "-t", v.FsType, v.Device)
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		log.Logf("mke2fs %s:\n%s", v.Device, out)
	}
	return err
}

// trustedKeys loads the public keys wipe packages must be signed with, one
// base64 key per line. A missing file just means no wipe package can verify.
func trustedKeys(path string) [][]byte {
	lines, err := fileutil.ReadConfigLines(path, 0)
	if err != nil {
		log.Logf("trusted keys: %s", err)
		return nil
	}
	var keys [][]byte
	for _, l := range lines {
		key, err := base64.StdEncoding.DecodeString(l)
		if err != nil || len(key) != ed25519.PublicKeySize {
			log.Logf("%s: skipping malformed key %q", path, l)
			continue
		}
		keys = append(keys, key)
	}
	log.Logf("loaded %d trusted keys from %s", len(keys), path)
	return keys
}

// rebootArg carries the quiescent flag into the next boot when this one ran
// dark.
func rebootArg(target string, quiescent bool) string {
	if !quiescent {
		return target
	}
	if target == "" {
		return "quiescent"
	}
	return target + ",quiescent"
}

// rejectInstaller stands in where a build carries no updater. Packages are
// acknowledged, recorded, and refused.
type rejectInstaller struct{}

var _ install.Installer = (*rejectInstaller)(nil)

func (r *rejectInstaller) Install(path string, wipeCache *bool) install.Status {
	if _, err := os.Stat(path); err != nil {
		log.Msgf("cannot read package %s: %s", path, err)
		return install.Corrupt
	}
	log.Msgf("this build carries no updater; refusing %s", path)
	return install.Error
}
