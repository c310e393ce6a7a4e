// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package power

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// RESTART2 takes a target string, which unix.Reboot cannot pass. The magic
// values are those the kernel requires for any reboot(2) call.
func restart2(target string) error {
	buf, err := unix.BytePtrFromString(target)
	if err != nil {
		return err
	}
	_, _, errno := unix.Syscall6(unix.SYS_REBOOT,
		uintptr(unix.LINUX_REBOOT_MAGIC1),
		uintptr(unix.LINUX_REBOOT_MAGIC2),
		uintptr(unix.LINUX_REBOOT_CMD_RESTART2),
		uintptr(unsafe.Pointer(buf)), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
