// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package kmsg

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

var ENoKlog = errors.New("kernel log unavailable")

const (
	sizeUnread = 10 //SYSLOG_ACTION_SIZE_UNREAD
	readAll    = 3  //SYSLOG_ACTION_READ_ALL
)

// Snapshot writes the current content of the kernel ring buffer to dest,
// readable only by root. Used to preserve the pre-wipe kernel log alongside
// the recovery logs.
func Snapshot(dest string) error {
	sz, err := unix.Klogctl(sizeUnread, nil)
	if err != nil {
		return err
	}
	if sz <= 0 {
		return ENoKlog
	}
	buf := make([]byte, sz)
	n, err := unix.Klogctl(readAll, buf)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, buf[:n], 0600)
}
