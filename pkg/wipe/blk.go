// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package wipe

import (
	"errors"
	"os"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/hw/ioctl"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"
)

var EZeroSize = errors.New("device reports zero size")

// blkOps is the subset of block-device operations secure wipe needs. The
// production implementation issues ioctls; tests substitute a recorder.
type blkOps interface {
	Size() (uint64, error)
	SecDiscard(rng [2]uint64) error
	DiscardZeroes() (bool, error)
	Discard(rng [2]uint64) error
	ZeroOut(rng [2]uint64) error
	Close() error
}

type devOps struct {
	f *os.File
}

func openBlk(dev string) (blkOps, error) {
	f, err := os.OpenFile(dev, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}
	return &devOps{f: f}, nil
}

func (d *devOps) Size() (uint64, error)          { return ioctl.BlkGetSize64(d.f) }
func (d *devOps) SecDiscard(rng [2]uint64) error { return ioctl.BlkSecDiscard(d.f, rng) }
func (d *devOps) DiscardZeroes() (bool, error)   { return ioctl.BlkDiscardZeroes(d.f) }
func (d *devOps) Discard(rng [2]uint64) error    { return ioctl.BlkDiscard(d.f, rng) }
func (d *devOps) ZeroOut(rng [2]uint64) error    { return ioctl.BlkZeroOut(d.f, rng) }
func (d *devOps) Close() error                   { return d.f.Close() }

// secureWipe erases the whole device, preferring operations that physically
// destroy data. Order: secure discard, then plain discard when discarded
// ranges read back zeroed, else explicit zero fill.
func secureWipe(dev string, ops blkOps) error {
	sz, err := ops.Size()
	if err != nil {
		return err
	}
	if sz == 0 {
		return EZeroSize
	}
	rng := [2]uint64{0, sz}

	if err = ops.SecDiscard(rng); err == nil {
		log.Logf("securely discarded %s (%d bytes)", dev, sz)
		return nil
	}
	log.Logf("secure discard of %s failed (%s), falling back", dev, err)

	zeroes, err := ops.DiscardZeroes()
	if err == nil && zeroes {
		// discarded blocks read back zeroed, so discard is as good as a
		// zero fill and is the last resort on this device
		if err = ops.Discard(rng); err != nil {
			return err
		}
		log.Logf("discarded %s (%d bytes)", dev, sz)
		return nil
	}

	if err = ops.ZeroOut(rng); err != nil {
		return err
	}
	log.Logf("zero-filled %s (%d bytes)", dev, sz)
	return nil
}
