// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package bcb reads and writes the bootloader control block, a fixed-layout
// record on the misc partition shared between the bootloader and the recovery
// console. It is the sole storage that survives both reboots and the wipe of
// every mountable filesystem.
package bcb

import (
	"bytes"
	"errors"
	"os"
	"strings"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"
)

// Fixed field layout within the control block. Offsets and widths are part of
// the contract with the bootloader and cannot change.
const (
	commandOff  = 0
	commandLen  = 32
	statusOff   = 32
	statusLen   = 32
	recoveryOff = 64
	recoveryLen = 768
	stageOff    = 832
	stageLen    = 32

	// total record size including reserved space
	BlockLen = 2048
)

// CommandRecovery in the command field tells the bootloader to boot into
// recovery; the recovery field then carries the arguments.
const CommandRecovery = "boot-recovery"

// recoverySentinel is the first line of a valid recovery field.
const recoverySentinel = "recovery"

var (
	EShortRead = errors.New("control block truncated")
	ENoStore   = errors.New("control block path not set")
)

// Record is the decoded control block. Fields are NUL-trimmed strings; writing
// re-pads them to the fixed layout.
type Record struct {
	Command  string
	Status   string
	Recovery string
	Stage    string
}

// Args returns the argument lines carried in the recovery field, one per
// line after the "recovery" sentinel. Nil when the sentinel is absent.
func (r *Record) Args() []string {
	lines := strings.Split(r.Recovery, "\n")
	if len(lines) == 0 || lines[0] != recoverySentinel {
		return nil
	}
	var args []string
	for _, l := range lines[1:] {
		if len(l) > 0 {
			args = append(args, l)
		}
	}
	return args
}

// Store reads and writes control block records at a fixed path, typically the
// misc partition's block device.
type Store struct {
	Path string
}

// Read decodes the control block. On any failure it logs and returns a zeroed
// record so boot can proceed without a command.
func (s *Store) Read() *Record {
	rec := &Record{}
	if s == nil || s.Path == "" {
		return rec
	}
	buf, err := os.ReadFile(s.Path)
	if err != nil {
		log.Logf("read control block: %s", err)
		return rec
	}
	if len(buf) < stageOff+stageLen {
		log.Logf("read control block: %s (%d bytes)", EShortRead, len(buf))
		return rec
	}
	rec.Command = field(buf, commandOff, commandLen)
	rec.Status = field(buf, statusOff, statusLen)
	rec.Recovery = field(buf, recoveryOff, recoveryLen)
	rec.Stage = field(buf, stageOff, stageLen)
	return rec
}

// Write persists args into the control block so that an interrupted operation
// restarts with the same arguments on next boot. Existing bytes outside the
// command and recovery fields are preserved.
func (s *Store) Write(args []string) error {
	if s == nil || s.Path == "" {
		return ENoStore
	}
	buf, err := s.readBlock()
	if err != nil {
		return err
	}
	setField(buf, commandOff, commandLen, CommandRecovery)
	rcv := recoverySentinel + "\n"
	for _, a := range args {
		rcv += a + "\n"
	}
	setField(buf, recoveryOff, recoveryLen, rcv)
	return s.writeBlock(buf)
}

// SetStage updates only the stage field, preserving command and arguments.
func (s *Store) SetStage(stage string) error {
	if s == nil || s.Path == "" {
		return ENoStore
	}
	buf, err := s.readBlock()
	if err != nil {
		return err
	}
	setField(buf, stageOff, stageLen, stage)
	return s.writeBlock(buf)
}

// Clear zeroes the command, status, and recovery fields so the bootloader
// boots normally. Idempotent; callers invoke it whenever recovery concludes.
func (s *Store) Clear() error {
	if s == nil || s.Path == "" {
		return ENoStore
	}
	buf, err := s.readBlock()
	if err != nil {
		return err
	}
	setField(buf, commandOff, commandLen, "")
	setField(buf, statusOff, statusLen, "")
	setField(buf, recoveryOff, recoveryLen, "")
	return s.writeBlock(buf)
}

// readBlock returns the existing record padded/truncated to BlockLen so that
// writes are always full-size read-modify-write operations.
func (s *Store) readBlock() ([]byte, error) {
	buf := make([]byte, BlockLen)
	existing, err := os.ReadFile(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	copy(buf, existing)
	return buf, nil
}

func (s *Store) writeBlock(buf []byte) error {
	f, err := os.OpenFile(s.Path, os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return err
	}
	_, err = f.WriteAt(buf, 0)
	if err == nil {
		err = f.Sync()
	}
	cerr := f.Close()
	if err == nil {
		err = cerr
	}
	return err
}

func field(buf []byte, off, l int) string {
	return string(bytes.TrimRight(buf[off:off+l], "\x00"))
}

func setField(buf []byte, off, l int, val string) {
	f := buf[off : off+l]
	for i := range f {
		f[i] = 0
	}
	copy(f, val)
}
