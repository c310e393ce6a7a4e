// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package ioctl wraps the block-device ioctls the wipe engine needs. Request
// numbers are from linux/fs.h.
package ioctl

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// FDer is anything with a file descriptor, i.e. *os.File.
type FDer interface {
	Fd() uintptr
}

//ioctl reading a single 64-bit value
func Ioctl1(fd uintptr, req int) (uint64, error) {
	var val uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(unsafe.Pointer(&val)))
	if errno != 0 {
		return 0, errno
	}
	return val, nil
}

//ioctl taking a [start, length) byte range
func ioctlRange(fd uintptr, req int, rng [2]uint64) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(unsafe.Pointer(&rng[0])))
	if errno != 0 {
		return errno
	}
	return nil
}
