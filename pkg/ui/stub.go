// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package ui

import (
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"
)

// Stub satisfies UI with no display at all. Used headless (quiescent boots)
// and in tests. Menu selections come from the Selections channel when tests
// drive one; otherwise every menu times out.
type Stub struct {
	textVisible bool
	textEver    bool

	Selections chan int
}

var _ UI = (*Stub)(nil)

func NewStub() *Stub { return &Stub{} }

func (s *Stub) Print(format string, args ...interface{}) {
	log.Logf(format, args...)
}

func (s *Stub) SetBackground(Background)     {}
func (s *Stub) SetProgressType(ProgressType) {}
func (s *Stub) SetStage(current, max int)    {}

func (s *Stub) ShowText(visible bool) {
	s.textVisible = visible
	if visible {
		s.textEver = true
	}
}

func (s *Stub) IsTextVisible() bool      { return s.textVisible }
func (s *Stub) WasTextEverVisible() bool { return s.textEver }

func (s *Stub) Menu(headers, items []string, initial int, menuOnly bool) int {
	if s.Selections != nil {
		if sel, ok := <-s.Selections; ok {
			return sel
		}
	}
	return KTimedOut
}
