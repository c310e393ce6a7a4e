// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package session

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/install"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/ui"
)

// promptAndWait is the interactive loop: show the menu, run the chosen
// action, repeat until an action ends the session.
func (s *Session) promptAndWait(status install.Status) After {
	u := s.Dev.UI()
	headers := []string{"Android Recovery", ""}
	if status == install.Error || status == install.Corrupt {
		headers = []string{"Android Recovery", "Last operation failed.", ""}
	}
	for {
		u.SetProgressType(ui.ProgressNone)
		sel := u.Menu(headers, s.Dev.MenuItems(), 0, false)
		if sel == ui.KTimedOut {
			// with text on screen someone may still be reading it
			if u.IsTextVisible() {
				continue
			}
			log.Logf("menu timed out, rebooting")
			return AfterReboot
		}
		if sel < 0 {
			continue
		}
		switch s.Dev.InvokeItem(sel) {
		case ui.ActionReboot:
			return AfterReboot
		case ui.ActionShutdown:
			return AfterShutdown
		case ui.ActionRebootBootloader:
			return AfterRebootBootloader
		case ui.ActionRebootRecovery:
			return AfterRebootRecovery
		case ui.ActionWipeData:
			if !u.IsTextVisible() {
				// nobody to confirm with, and nobody to loop for
				s.Wipe.WipeData()
				return AfterReboot
			}
			if s.confirmWipe("Wipe all user data?") {
				s.Wipe.WipeData()
			}
		case ui.ActionWipeCache:
			if !u.IsTextVisible() {
				s.Wipe.WipeCache()
				return AfterReboot
			}
			if s.confirmWipe("Wipe cache?") {
				s.Wipe.WipeCache()
			}
		case ui.ActionWipeSystem:
			if !u.IsTextVisible() {
				s.Wipe.WipeSystem()
				return AfterReboot
			}
			if s.confirmWipe("Wipe system?") {
				s.Wipe.WipeSystem()
			}
		case ui.ActionApplyUpdate:
			s.sideload()
		case ui.ActionMountSystem:
			if err := s.Vols.EnsureMounted("/system"); err == nil {
				u.Print("Mounted /system.\n")
			}
		case ui.ActionViewLogs:
			s.chooseAndViewLog()
		case ui.ActionRunGraphicsTest:
			u.Print("Graphics test not supported on this build.\n")
		case ui.ActionRunLocaleTest:
			u.Print("Locale: %s\n", s.locale)
		}
	}
}

// confirmWipe presents the deliberately awkward two-step confirmation. The
// affirmative item sits in the middle so a held-down key cannot select it.
func (s *Session) confirmWipe(question string) bool {
	u := s.Dev.UI()
	headers := []string{question, "  THIS CAN NOT BE UNDONE!", ""}
	items := []string{
		" Cancel",
		" Cancel",
		" Cancel",
		" Factory data reset",
		" Cancel",
		" Cancel",
		" Cancel",
	}
	sel := u.Menu(headers, items, 0, true)
	return sel == 3
}

// chooseAndViewLog lists the preserved logs and prints the chosen one.
func (s *Session) chooseAndViewLog() {
	u := s.Dev.UI()
	ents, err := os.ReadDir(s.Logs.CacheDir)
	if err != nil {
		u.Print("No logs found.\n")
		return
	}
	var names []string
	for _, ent := range ents {
		if ent.IsDir() {
			continue
		}
		names = append(names, ent.Name())
	}
	if len(names) == 0 {
		u.Print("No logs found.\n")
		return
	}
	sort.Strings(names)
	names = append(names, "Back")

	sel := u.Menu([]string{"Select log:", ""}, names, 0, true)
	if sel < 0 || sel >= len(names)-1 {
		return
	}
	p := filepath.Join(s.Logs.CacheDir, names[sel])
	buf, err := os.ReadFile(p)
	if err != nil {
		u.Print("read %s: %s\n", p, err)
		return
	}
	u.Print("%s:\n%s\n", names[sel], buf)
}
