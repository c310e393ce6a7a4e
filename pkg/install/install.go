// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package install defines the install outcome vocabulary the session acts on,
// and sideload: accepting a package pushed onto the device while the console
// waits.
package install

// Status is the outcome of an install attempt. The session's dispatch and
// retry logic branch on these.
type Status int

const (
	// Success: package applied.
	Success Status = iota
	// None: no install was attempted.
	None
	// Error: install ran and failed.
	Error
	// Corrupt: the package could not be read or parsed.
	Corrupt
	// Skipped: a gate refused the install before it started.
	Skipped
	// Retry: failed in a way worth an automatic re-attempt.
	Retry
	// Unverified: signature check failed; policy decides what follows.
	Unverified
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case None:
		return "none"
	case Error:
		return "error"
	case Corrupt:
		return "corrupt"
	case Skipped:
		return "skipped"
	case Retry:
		return "retry"
	case Unverified:
		return "unverified"
	}
	return "unknown"
}

// Error codes recorded with a failed install for the booted system to report.
const (
	CodeLowBattery          = 51
	CodeBootreasonBlacklist = 52
)

// Installer applies an update package. Implementations may request a cache
// wipe afterward by setting *wipeCache.
type Installer interface {
	Install(path string, wipeCache *bool) Status
}
