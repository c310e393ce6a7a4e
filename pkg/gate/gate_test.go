// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package gate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log/testlog"
)

type fakeHealth struct {
	charging bool
	// successive capacity readings; last one repeats
	caps []int
	idx  int
}

func (f *fakeHealth) Charging() bool { return f.charging }

func (f *fakeHealth) Capacity() int {
	c := f.caps[f.idx]
	if f.idx < len(f.caps)-1 {
		f.idx++
	}
	return c
}

//func BatteryOK
func TestBatteryOK(t *testing.T) {
	tests := []struct {
		name     string
		charging bool
		caps     []int
		want     bool
	}{
		{"full unplugged", false, []int{95}, true},
		{"low unplugged", false, []int{19}, false},
		{"low charging", true, []int{19}, true},
		{"very low charging", true, []int{14}, false},
		{"at threshold", false, []int{20}, true},
		{"placeholder then real", false, []int{50, 50, 80}, true},
		{"placeholder then low", false, []int{50, 10}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tlog := testlog.NewTestLogNoBG(t)
			defer tlog.Freeze()
			h := &fakeHealth{charging: tc.charging, caps: tc.caps}
			got := BatteryOK(h, time.Millisecond, 10)
			if got != tc.want {
				t.Errorf("got %t, want %t", got, tc.want)
			}
		})
	}
}

//func BatteryOK
func TestBatteryPlaceholderStuck(t *testing.T) {
	tlog := testlog.NewTestLogNoBG(t)
	defer tlog.Freeze()

	//gauge never produces a real reading; the placeholder is accepted
	h := &fakeHealth{caps: []int{50}}
	if !BatteryOK(h, time.Millisecond, 3) {
		t.Error("stuck placeholder of 50%% should pass the 20%% threshold")
	}
}

//func (s *SysfsHealth) Charging
func TestSysfsCharging(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"Charging", true},
		{"Full", true},
		{"Discharging", false},
		{"Not charging", false},
		//a gauge that cannot classify its state does not block an install
		{"Unknown", true},
	}
	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			dir := t.TempDir()
			err := os.WriteFile(filepath.Join(dir, "status"), []byte(tc.status+"\n"), 0644)
			if err != nil {
				t.Fatal(err)
			}
			h := &SysfsHealth{Dir: dir}
			if got := h.Charging(); got != tc.want {
				t.Errorf("%q: got %t, want %t", tc.status, got, tc.want)
			}
		})
	}
}

//func (s *SysfsHealth) Charging
func TestSysfsChargingNoBattery(t *testing.T) {
	h := &SysfsHealth{Dir: filepath.Join(t.TempDir(), "nonexistent")}
	if !h.Charging() {
		t.Error("a device with no battery node is externally powered")
	}
}

//func ReasonBlacklisted
func TestReasonBlacklisted(t *testing.T) {
	for reason, want := range map[string]bool{
		"kernel_panic": true,
		"Panic":        true,
		"PANIC":        true,
		"reboot":       false,
		"":             false,
		"watchdog":     false,
	} {
		if got := ReasonBlacklisted(reason); got != want {
			t.Errorf("%q: got %t, want %t", reason, got, want)
		}
	}
}
