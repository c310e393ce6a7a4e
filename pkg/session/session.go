// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package session orchestrates one boot of the recovery console: resolve the
// command, run it, optionally drop to the menu, then clean up and hand the
// device back to the bootloader.
package session

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/args"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/bcb"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/fileutil"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/gate"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/install"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/logs"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/props"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/ui"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/vol"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/wipe"

	"github.com/looplab/fsm"
)

// DefaultLocale is used when no locale was passed and none was cached.
const DefaultLocale = "en-US"

// lifecycle states
const (
	stResolving = "resolving"
	stDispatch  = "dispatching"
	stPrompting = "prompting"
	stFinishing = "finishing"
	stDone      = "done"
)

// lifecycle events
const (
	evDispatch = "dispatch"
	evPrompt   = "prompt"
	evFinish   = "finish"
	evDone     = "terminate"
)

// After is what happens once the session concludes.
type After int

const (
	AfterReboot After = iota
	AfterShutdown
	AfterRebootBootloader
	AfterRebootRecovery
)

// Session holds one boot's worth of state and collaborators. Everything that
// touches hardware or persistent storage is injected.
type Session struct {
	Resolver *args.Resolver
	BCB      *bcb.Store
	Vols     *vol.Table
	Logs     *logs.Manager
	Wipe     *wipe.Engine
	Inst     install.Installer
	Side     *install.Sideloader
	Dev      ui.Device
	Health   gate.Health
	Props    *props.Props

	// CommandFile is unlinked when the session concludes.
	CommandFile string
	// LocaleFile caches the locale across boots.
	LocaleFile string
	// WipeList and MiscDev drive A/B wipes.
	WipeList string
	MiscDev  string

	// Battery tunes the stuck-gauge wait.
	Battery BatteryWait

	opts      *args.Options
	cmdArgs   []string
	locale    string
	quiescent bool
	finalized bool
	armed     bool
	lifecycle *fsm.FSM
}

// BatteryWait bundles the poll parameters for a fuel gauge that has not
// produced a real reading yet.
type BatteryWait struct {
	Interval time.Duration
	Polls    uint64
}

func newLifecycle() *fsm.FSM {
	events := fsm.Events{
		{Name: evDispatch, Src: []string{stResolving}, Dst: stDispatch},
		{Name: evPrompt, Src: []string{stDispatch}, Dst: stPrompting},
		{Name: evFinish, Src: []string{stResolving, stDispatch, stPrompting}, Dst: stFinishing},
		{Name: evDone, Src: []string{stFinishing}, Dst: stDone},
	}
	callbacks := fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			log.Logf("session: %s -> %s", e.Src, e.Dst)
		},
	}
	return fsm.NewFSM(stResolving, events, callbacks)
}

func (s *Session) step(ev string) {
	if err := s.lifecycle.Event(context.Background(), ev); err != nil {
		log.Fatalf("session lifecycle: %s", err)
	}
}

// Run executes the whole session and returns what to do with the device.
// It only returns after cleanup; the caller's sole remaining duty is the
// reboot or poweroff itself.
func (s *Session) Run(argv []string) After {
	s.lifecycle = newLifecycle()
	s.Dev.StartSession()

	rec := s.BCB.Read()
	s.cmdArgs = s.Resolver.Resolve(argv)
	s.opts = args.Parse(s.cmdArgs)
	log.Logf("boot command: %s", strings.Join(s.cmdArgs, " "))

	s.loadLocale()
	s.applyStage(rec.Stage)
	s.Wipe.Reason = s.opts.Reason
	s.quiescent = s.Props.Quiescent()
	u := s.Dev.UI()
	if s.opts.ShowText {
		u.ShowText(true)
	}
	if reason := s.Props.BootReason(); reason != "" {
		log.Logf("boot reason: %s", reason)
	}

	s.step(evDispatch)
	status, after := s.dispatch()

	if status == install.Retry {
		// the control block is armed for the next attempt; do not
		// finalize, that would disarm it
		s.armed = true
		s.step(evFinish)
		s.step(evDone)
		return AfterReboot
	}

	if !s.quiescent && (s.interactiveWorthwhile(status) || u.IsTextVisible()) {
		switch status {
		case install.Success:
			// text was requested; leave the installed background up
		case install.None:
			u.SetBackground(ui.BackgroundNoCommand)
		default:
			u.SetBackground(ui.BackgroundError)
		}
		u.ShowText(true)
		s.step(evPrompt)
		after = s.promptAndWait(status)
	}
	s.step(evFinish)

	s.Finalize(status == install.Success)
	s.step(evDone)
	if s.opts.ShutdownAfter && after == AfterReboot {
		after = AfterShutdown
	}
	return after
}

// interactiveWorthwhile reports whether the outcome alone warrants the menu.
// A visible text display forces the menu regardless, in the caller.
func (s *Session) interactiveWorthwhile(status install.Status) bool {
	switch status {
	case install.None:
		// nothing was asked of us; show the menu
		return true
	case install.Success, install.Skipped:
		// done, or a gate refused and the device should retry on its
		// own terms
		return false
	}
	return !s.opts.SideloadAutoReboot
}

// dispatch runs the resolved command. Returns the outcome and the after
// action the command implies.
func (s *Session) dispatch() (install.Status, After) {
	o := s.opts
	after := AfterReboot
	if o.RetryCount > 0 {
		log.Logf("install attempt %d", o.RetryCount+1)
	}
	switch {
	case o.UpdatePackage != "":
		return s.installUpdate(o.UpdatePackage), after
	case o.WipeData:
		if s.Wipe.WipeData() {
			return install.Success, after
		}
		return install.Error, after
	case o.PromptAndWipeData:
		// a crashing system sent us here; the user decides
		s.Dev.UI().ShowText(true)
		if s.confirmWipe("Cannot load Android system. Your data may be corrupt.") {
			if s.Wipe.WipeData() {
				return install.Success, after
			}
			return install.Error, after
		}
		return install.None, after
	case o.WipeCache:
		if s.Wipe.WipeCache() {
			return install.Success, after
		}
		return install.Error, after
	case o.WipeAB:
		if s.Wipe.WipeAB(s.MiscDev, o.WipePackageSize, s.WipeList) {
			return install.Success, after
		}
		return install.Error, after
	case o.Sideload:
		return s.sideload(), after
	case o.JustExit:
		return install.Success, after
	}
	return install.None, after
}

// installUpdate applies the named package, enforcing the pre-install gates
// and the retry budget.
func (s *Session) installUpdate(pkg string) install.Status {
	u := s.Dev.UI()
	// even a refused attempt is worth a record in the saved history
	s.Logs.SetModified()
	if reason := s.Props.BootReason(); gate.ReasonBlacklisted(reason) {
		log.Msgf("refusing automatic install: boot reason %q", reason)
		s.Logs.WriteInstallResult(pkg, install.CodeBootreasonBlacklist)
		return install.Skipped
	}
	if !gate.BatteryOK(s.Health, s.Battery.Interval, s.Battery.Polls) {
		s.Logs.WriteInstallResult(pkg, install.CodeLowBattery)
		return install.Skipped
	}
	if s.opts.RetryCount == 0 {
		// a reboot during the install must resume as a retry, not replay
		// as a fresh first attempt
		if err := s.Resolver.SetRetry(s.cmdArgs, 1); err != nil {
			log.Logf("persist retry count: %s", err)
		}
	}

	u.SetBackground(ui.BackgroundInstalling)
	u.SetProgressType(ui.ProgressBar)
	wipeCache := false
	st := s.Inst.Install(pkg, &wipeCache)
	if st == install.Success && wipeCache {
		if !s.Wipe.WipeCache() {
			st = install.Error
		}
	}
	if st == install.Unverified {
		if s.opts.Security {
			// a security update is never waved through unverified
			log.Msgf("Package verification failed; security policy forbids continuing.")
			st = install.Error
		} else {
			// surfaced to the menu, where the user may retry at their
			// own risk
			log.Msgf("Package %s failed verification.", pkg)
		}
	}
	s.Logs.WriteInstallResult(pkg, statusCode(st))

	if st == install.Retry {
		limit := s.opts.RetryCount
		if limit < gate.RetryLimit {
			// arm the next attempt and let the caller reboot into it
			if err := s.Resolver.SetRetry(s.cmdArgs, s.opts.RetryCount+1); err != nil {
				log.Logf("persist retry count: %s", err)
				return install.Error
			}
			log.Msgf("install failed; retrying after reboot (%d/%d)",
				s.opts.RetryCount+1, gate.RetryLimit)
			s.Logs.Copy()
			return install.Retry
		}
		log.Msgf("install failed %d times, giving up", gate.RetryLimit+1)
		return install.Error
	}
	return st
}

func statusCode(st install.Status) int {
	if st == install.Success {
		return 0
	}
	return 1
}

// sideload waits for a pushed package and installs it.
func (s *Session) sideload() install.Status {
	u := s.Dev.UI()
	if !s.opts.SideloadAutoReboot {
		u.ShowText(true)
	}
	pkg, err := s.Side.Wait(nil)
	if err != nil {
		log.Msgf("sideload: %s", err)
		return install.Error
	}
	s.Logs.SetModified()
	u.SetBackground(ui.BackgroundInstalling)
	wipeCache := false
	st := s.Inst.Install(pkg, &wipeCache)
	if st == install.Success && wipeCache {
		if !s.Wipe.WipeCache() {
			st = install.Error
		}
	}
	u.Print("\nInstall from sideload: %s.\n", st)
	return st
}

// loadLocale resolves the UI locale: boot command, then the cached value,
// then the default.
func (s *Session) loadLocale() {
	s.locale = s.opts.Locale
	if s.locale == "" && s.LocaleFile != "" {
		if err := s.Vols.EnsureMounted(s.LocaleFile); err == nil {
			if buf, err := os.ReadFile(s.LocaleFile); err == nil {
				s.locale = strings.TrimSpace(string(buf))
			}
		}
	}
	if s.locale == "" {
		s.locale = DefaultLocale
	}
	log.Logf("locale: %s", s.locale)
}

// applyStage parses "current/max" from the control block and surfaces it.
func (s *Session) applyStage(stage string) {
	if stage == "" {
		return
	}
	curS, maxS, ok := strings.Cut(stage, "/")
	if !ok {
		log.Logf("malformed stage %q", stage)
		return
	}
	cur, err1 := strconv.Atoi(curS)
	max, err2 := strconv.Atoi(maxS)
	if err1 != nil || err2 != nil {
		log.Logf("malformed stage %q", stage)
		return
	}
	s.Dev.UI().SetStage(cur, max)
}

// Finalize concludes the session: cache the locale, preserve logs, release
// the durable command, remove the command file. Idempotent; later calls are
// no-ops so every exit path can invoke it safely. A session that armed the
// control block for a retry refuses to finalize at all, even from the preboot
// hook, since clearing the block would cancel the queued attempt.
func (s *Session) Finalize(success bool) {
	if s.finalized || s.armed {
		return
	}
	s.finalized = true
	log.Logf("finalizing session (success: %t)", success)

	if s.LocaleFile != "" && s.locale != "" {
		if err := s.Vols.EnsureMounted(s.LocaleFile); err == nil {
			err = fileutil.WriteFileSynced(s.LocaleFile, []byte(s.locale), 0600)
			if err != nil {
				log.Logf("cache locale: %s", err)
			}
		}
	}
	s.Logs.Copy()
	if err := s.BCB.Clear(); err != nil {
		log.Logf("clear control block: %s", err)
	}
	if s.CommandFile != "" {
		if err := os.Remove(s.CommandFile); err != nil && !os.IsNotExist(err) {
			log.Logf("remove %s: %s", s.CommandFile, err)
		}
	}
	if s.Dev.UI().WasTextEverVisible() {
		fmt.Println("") //keep the last line visible on a scrolling console
	}
}
