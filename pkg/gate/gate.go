// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package gate holds the checks that run before an unattended install is
// allowed to start. A device that dies mid-flash is bricked, so installs are
// refused on low battery; installs triggered by a crashing kernel are refused
// to avoid a crash loop.
package gate

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"

	"github.com/cenkalti/backoff/v4"
)

// RetryLimit bounds automatic re-attempts of a failed install.
const RetryLimit = 4

const (
	// minimum capacity to start an install
	minBattery = 20
	// lower threshold when a charger is attached
	minBatteryCharging = 15
)

// Health reports battery state. The sysfs implementation is the production
// one; tests substitute fixed values.
type Health interface {
	// Charging reports whether a power source is attached.
	Charging() bool
	// Capacity is the charge percentage, 0-100.
	Capacity() int
}

// SysfsHealth reads the kernel's power supply interface.
type SysfsHealth struct {
	// Dir is the battery's sysfs node, normally
	// /sys/class/power_supply/battery.
	Dir string
}

func (s *SysfsHealth) Charging() bool {
	buf, err := os.ReadFile(s.Dir + "/status")
	if err != nil {
		// no battery node means externally powered
		return true
	}
	// anything the kernel cannot classify counts as charged; only an
	// explicit discharge state blocks an install
	switch strings.TrimSpace(string(buf)) {
	case "Discharging", "Not charging":
		return false
	}
	return true
}

func (s *SysfsHealth) Capacity() int {
	buf, err := os.ReadFile(s.Dir + "/capacity")
	if err != nil {
		return 100
	}
	c, err := strconv.Atoi(strings.TrimSpace(string(buf)))
	if err != nil {
		return 100
	}
	return c
}

// placeholderCapacity is reported by some fuel gauges before their first real
// reading.
const placeholderCapacity = 50

// BatteryOK reports whether charge suffices to start an install. A reading
// stuck at the gauge's power-on placeholder is polled until it moves or the
// wait budget runs out; a reading still at the placeholder after that is
// taken at face value.
func BatteryOK(h Health, interval time.Duration, maxPolls uint64) bool {
	pct := h.Capacity()
	if pct == placeholderCapacity {
		b := backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), maxPolls)
		err := backoff.Retry(func() error {
			pct = h.Capacity()
			if pct == placeholderCapacity {
				return errPlaceholder
			}
			return nil
		}, b)
		if err != nil {
			log.Logf("battery gauge stuck at %d%%, proceeding with that reading", pct)
		}
	}
	charging := h.Charging()
	needed := minBattery
	if charging {
		needed = minBatteryCharging
	}
	ok := pct >= needed
	if !ok {
		log.Msgf("battery at %d%% (charging: %t); at least %d%% needed", pct, charging, needed)
	} else {
		log.Logf("battery at %d%% (charging: %t), ok to install", pct, charging)
	}
	return ok
}

var errPlaceholder = errors.New("capacity reading is the gauge placeholder")

// bootreason values that must not trigger an automatic install
var reasonBlacklist = []string{"kernel_panic", "panic"}

// ReasonBlacklisted reports whether the boot reason indicates a crash, in
// which case an automatic install is refused.
func ReasonBlacklisted(reason string) bool {
	r := strings.ToLower(reason)
	for _, b := range reasonBlacklist {
		if r == b {
			return true
		}
	}
	return false
}
