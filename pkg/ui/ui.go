// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package ui defines the surface the session talks to for user interaction,
// and the device hooks vendors override. The console must run headless, so
// every implementation here degrades to no-ops rather than failing.
package ui

// Background selects the full-screen state shown behind any text.
type Background int

const (
	BackgroundNone Background = iota
	BackgroundInstalling
	BackgroundErasing
	BackgroundError
	BackgroundNoCommand
)

// ProgressType selects how the progress indicator behaves.
type ProgressType int

const (
	ProgressNone ProgressType = iota
	ProgressIndeterminate
	ProgressBar
)

// Menu sentinel results, distinct from any item index.
const (
	KGoBack   = -1
	KGoHome   = -2
	KRefresh  = -3
	KTimedOut = -4
)

// UI is what the session drives. Print output also lands in the log; UIs
// whose text view is hidden buffer it until the view is shown.
type UI interface {
	Print(format string, args ...interface{})
	SetBackground(b Background)
	SetProgressType(p ProgressType)
	SetStage(current, max int)
	ShowText(visible bool)
	IsTextVisible() bool
	WasTextEverVisible() bool
	// Menu displays headers and items, blocking until a selection or a
	// sentinel. initial is the item highlighted first; menuOnly prevents
	// key handlers from reporting device-specific actions.
	Menu(headers, items []string, initial int, menuOnly bool) int
}

// Action is the vocabulary of things a menu or key handler can request.
type Action int

const (
	ActionNone Action = iota
	ActionReboot
	ActionApplyUpdate
	ActionWipeData
	ActionWipeCache
	ActionWipeSystem
	ActionMountSystem
	ActionViewLogs
	ActionRunGraphicsTest
	ActionRunLocaleTest
	ActionShutdown
	ActionRebootBootloader
	ActionRebootRecovery
)

// Device is the vendor-overridable policy object.
type Device interface {
	UI() UI
	// MenuItems returns the main menu entries; InvokeItem maps a selected
	// index to an Action.
	MenuItems() []string
	InvokeItem(i int) Action
	// PreWipeData/PostWipeData bracket a data wipe; returning false fails
	// the wipe.
	PreWipeData() bool
	PostWipeData() bool
	StartSession()
}
