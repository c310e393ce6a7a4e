// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package ui

// DefaultDevice is the stock policy object. Vendors embed it and override
// what differs.
type DefaultDevice struct {
	ui UI
}

var _ Device = (*DefaultDevice)(nil)

func NewDevice(u UI) *DefaultDevice { return &DefaultDevice{ui: u} }

func (d *DefaultDevice) UI() UI { return d.ui }

var defaultMenu = []struct {
	label  string
	action Action
}{
	{"Reboot system now", ActionReboot},
	{"Reboot to bootloader", ActionRebootBootloader},
	{"Reboot to recovery", ActionRebootRecovery},
	{"Apply update", ActionApplyUpdate},
	{"Wipe data/factory reset", ActionWipeData},
	{"Wipe cache partition", ActionWipeCache},
	{"Wipe system partition", ActionWipeSystem},
	{"Mount /system", ActionMountSystem},
	{"View recovery logs", ActionViewLogs},
	{"Run graphics test", ActionRunGraphicsTest},
	{"Run locale test", ActionRunLocaleTest},
	{"Power off", ActionShutdown},
}

func (d *DefaultDevice) MenuItems() []string {
	items := make([]string, len(defaultMenu))
	for i, e := range defaultMenu {
		items[i] = e.label
	}
	return items
}

func (d *DefaultDevice) InvokeItem(i int) Action {
	if i < 0 || i >= len(defaultMenu) {
		return ActionNone
	}
	return defaultMenu[i].action
}

func (d *DefaultDevice) PreWipeData() bool  { return true }
func (d *DefaultDevice) PostWipeData() bool { return true }
func (d *DefaultDevice) StartSession()      {}
