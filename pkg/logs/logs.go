// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package logs preserves the console's own logs across boots and wipes.
// The live log accumulates on the ramdisk; this package copies it to
// persistent storage at the points where that storage is known to be intact,
// rotates prior boots' logs, and records install outcomes.
package logs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/fileutil"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/hw/kmsg"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/vol"
)

// KeepLogCount bounds how many prior boots' logs are retained.
const KeepLogCount = 10

// uid/gid owning the persisted logs so the booted system can read them
const systemID = 1000

// Manager copies the live log to persistent storage. The carry offset tracks
// how much of the live log has already been appended, so repeated copies
// within one boot do not duplicate lines.
type Manager struct {
	// ramdisk log, written continuously
	TmpLog string
	// ramdisk install summary, mirrored out on the next Copy
	TmpInstall string
	// persistent destinations
	CacheDir string
	Vols     *vol.Table

	carryOffset int64
	modified    bool
	rotated     bool
}

func (m *Manager) logFile() string     { return filepath.Join(m.CacheDir, "log") }
func (m *Manager) lastLog() string     { return filepath.Join(m.CacheDir, "last_log") }
func (m *Manager) lastKmsg() string    { return filepath.Join(m.CacheDir, "last_kmsg") }
func (m *Manager) lastInstall() string { return filepath.Join(m.CacheDir, "last_install") }

// SetModified marks that this boot touched persistent storage. Until then
// Copy does nothing, so a boot that only shows the menu does not churn the
// saved history.
func (m *Manager) SetModified() {
	m.modified = true
}

// Rotate shifts last_log to last_log.1 and so on, dropping the oldest. Copy
// runs it once per boot, before overwriting last_log for the first time.
func (m *Manager) Rotate() {
	if err := m.Vols.EnsureMounted(m.CacheDir); err != nil {
		return
	}
	for _, name := range []string{m.lastLog(), m.lastKmsg()} {
		for i := KeepLogCount - 1; i >= 0; i-- {
			src := name
			if i > 0 {
				src = fmt.Sprintf("%s.%d", name, i)
			}
			if _, err := os.Stat(src); err != nil {
				continue
			}
			dst := fmt.Sprintf("%s.%d", name, i+1)
			if err := os.Rename(src, dst); err != nil {
				log.Logf("rotate %s: %s", src, err)
			}
		}
	}
}

// Copy writes the live log out to persistent storage: appended to the
// cumulative log, replacing last_log and last_install, plus a kernel log
// snapshot. A no-op until SetModified. Safe to call repeatedly; only new
// live-log bytes are appended each time.
func (m *Manager) Copy() {
	if !m.modified {
		return
	}
	// The pmsg store gets the install summary even on devices without a
	// log volume. The live log already reaches it entry by entry.
	mirrorToPmsg(m.TmpInstall)

	if err := m.Vols.EnsureMounted(m.CacheDir); err != nil {
		return
	}
	if err := os.MkdirAll(m.CacheDir, 0755); err != nil {
		log.Logf("create %s: %s", m.CacheDir, err)
		return
	}
	if !m.rotated {
		m.rotated = true
		m.Rotate()
	}

	m.appendNew(m.logFile())
	m.replace(m.TmpLog, m.lastLog())
	if _, err := os.Stat(m.TmpInstall); err == nil {
		m.replace(m.TmpInstall, m.lastInstall())
	}
	if err := kmsg.Snapshot(m.lastKmsg()); err != nil {
		log.Logf("kernel log snapshot: %s", err)
	} else {
		m.own(m.lastKmsg())
	}
}

// ResetCarry forgets how much was already copied. Called after the cache
// volume is recreated, when the cumulative log no longer exists.
func (m *Manager) ResetCarry() {
	m.carryOffset = 0
}

// appendNew appends live-log bytes past the carry offset to dst.
func (m *Manager) appendNew(dst string) {
	src, err := os.Open(m.TmpLog)
	if err != nil {
		log.Logf("open %s: %s", m.TmpLog, err)
		return
	}
	defer src.Close()
	if _, err = src.Seek(m.carryOffset, io.SeekStart); err != nil {
		log.Logf("seek %s: %s", m.TmpLog, err)
		return
	}
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		log.Logf("open %s: %s", dst, err)
		return
	}
	n, err := io.Copy(f, src)
	if err != nil {
		log.Logf("copy to %s: %s", dst, err)
	}
	m.carryOffset += n
	if err = f.Close(); err != nil {
		log.Logf("close %s: %s", dst, err)
	}
	m.own(dst)
}

// replace copies src whole over dst.
func (m *Manager) replace(src, dst string) {
	if err := fileutil.CopyFile(src, dst, 0); err != nil {
		log.Logf("copy to %s: %s", dst, err)
		return
	}
	m.own(dst)
}

func (m *Manager) own(path string) {
	if err := os.Chmod(path, 0600); err != nil {
		log.Logf("chmod %s: %s", path, err)
	}
	if err := os.Chown(path, systemID, systemID); err != nil {
		// expected when not running as root, e.g. under test
		log.Logf("chown %s: %s", path, err)
	}
}

// WriteInstallResult records an install outcome to the temporary summary
// file; Copy mirrors it out with the logs. Failures carry an error code on a
// third line.
func (m *Manager) WriteInstallResult(pkg string, code int) {
	content := fmt.Sprintf("%s\n0\n", pkg)
	if code != 0 {
		content += fmt.Sprintf("error: %d\n", code)
	}
	if err := fileutil.WriteFileSynced(m.TmpInstall, []byte(content), 0600); err != nil {
		log.Logf("write %s: %s", m.TmpInstall, err)
	}
}
