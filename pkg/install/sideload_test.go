// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package install

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log/testlog"
)

//func (s *Sideloader) Wait
func TestSideloadExisting(t *testing.T) {
	tlog := testlog.NewTestLogNoBG(t)
	defer tlog.Freeze()

	dir := t.TempDir()
	pkg := filepath.Join(dir, "update.zip")
	if err := os.WriteFile(pkg, []byte("pk"), 0644); err != nil {
		t.Fatal(err)
	}
	s := &Sideloader{Dir: dir}
	got, err := s.Wait(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != pkg {
		t.Errorf("%q != %q", got, pkg)
	}
}

//func (s *Sideloader) Wait
func TestSideloadArrival(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()

	dir := t.TempDir()
	s := &Sideloader{Dir: dir, Name: "update.zip"}

	type res struct {
		p   string
		err error
	}
	done := make(chan res, 1)
	go func() {
		p, err := s.Wait(nil)
		done <- res{p, err}
	}()
	// give the watch time to establish
	time.Sleep(100 * time.Millisecond)

	//a decoy with the wrong name must be ignored
	if err := os.WriteFile(filepath.Join(dir, "other.bin"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	pkg := filepath.Join(dir, "update.zip")
	if err := os.WriteFile(pkg, []byte("pk"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatal(r.err)
		}
		if r.p != pkg {
			t.Errorf("%q != %q", r.p, pkg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for sideload")
	}
}

//func (s *Sideloader) poll
func TestSideloadPollNamed(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()

	dir := t.TempDir()
	s := &Sideloader{Dir: dir, Name: "update.zip"}
	pkg := filepath.Join(dir, "update.zip")

	type res struct {
		p   string
		err error
	}
	done := make(chan res, 1)
	go func() {
		p, err := s.poll(nil)
		done <- res{p, err}
	}()
	time.Sleep(150 * time.Millisecond)
	if err := os.WriteFile(pkg, []byte("pk"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatal(r.err)
		}
		if r.p != pkg {
			t.Errorf("%q != %q", r.p, pkg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("poll never noticed the package")
	}
}

//func (s *Sideloader) poll
func TestSideloadPollCancel(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()

	s := &Sideloader{Dir: t.TempDir()}
	cancel := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := s.poll(cancel)
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	close(cancel)

	select {
	case err := <-done:
		if err != ECancelled {
			t.Errorf("err %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancel did not unblock the poll")
	}
}

//func (s *Sideloader) Wait
func TestSideloadCancel(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()

	s := &Sideloader{Dir: t.TempDir()}
	cancel := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := s.Wait(cancel)
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	close(cancel)

	select {
	case err := <-done:
		if err != ECancelled {
			t.Errorf("err %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancel did not unblock the wait")
	}
}
