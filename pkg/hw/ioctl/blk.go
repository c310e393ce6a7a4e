// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package ioctl

//BLKSSZGET
func BlkGetSectorSize(f FDer) (uint64, error) {
	BLKSSZGET := 0x1268
	s, err := Ioctl1(f.Fd(), BLKSSZGET)
	return uint64(s), err
}

//BLKGETSIZE64
func BlkGetSize64(f FDer) (uint64, error) {
	BLKGETSIZE64 := 0x80081272
	return Ioctl1(f.Fd(), BLKGETSIZE64)
}

//BLKDISCARD - logically discard the byte range
func BlkDiscard(f FDer, rng [2]uint64) error {
	BLKDISCARD := 0x1277
	return ioctlRange(f.Fd(), BLKDISCARD, rng)
}

//BLKDISCARDZEROES - true if a discarded range reads back as zeroes
func BlkDiscardZeroes(f FDer) (bool, error) {
	BLKDISCARDZEROES := 0x127c
	z, err := Ioctl1(f.Fd(), BLKDISCARDZEROES)
	return z != 0, err
}

//BLKSECDISCARD - physically erase the byte range; not universally implemented
func BlkSecDiscard(f FDer, rng [2]uint64) error {
	BLKSECDISCARD := 0x127d
	return ioctlRange(f.Fd(), BLKSECDISCARD, rng)
}

//BLKZEROOUT - explicitly zero-fill the byte range
func BlkZeroOut(f FDer, rng [2]uint64) error {
	BLKZEROOUT := 0x127f
	return ioctlRange(f.Fd(), BLKZEROOUT, rng)
}
