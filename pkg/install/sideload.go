// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package install

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/fileutil"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"

	"github.com/rjeczalik/notify"
)

var ECancelled = errors.New("sideload cancelled")

// Sideloader waits for a package to be pushed into a staging directory and
// hands its path to the session.
type Sideloader struct {
	// Dir is the staging directory watched for the incoming package.
	Dir string
	// Name, when set, restricts the wait to that file name.
	Name string
}

// Wait blocks until a package finishes arriving in the staging directory, or
// cancel is closed. A file already present when the watch starts is accepted
// immediately.
func (s *Sideloader) Wait(cancel <-chan struct{}) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", err
	}
	eventChan := make(chan notify.EventInfo, 1)
	defer notify.Stop(eventChan)
	if err := notify.Watch(s.Dir, eventChan, notify.InCloseWrite, notify.InMovedTo); err != nil {
		// kernels built without inotify still get sideload, just slower
		log.Logf("watch %s: %s; falling back to polling", s.Dir, err)
		return s.poll(cancel)
	}

	// a package may have landed before the watch existed
	if p := s.existing(); p != "" {
		return p, nil
	}
	log.Msgf("waiting for a package in %s...", s.Dir)
	for {
		select {
		case ei := <-eventChan:
			p := ei.Path()
			if s.Name != "" && filepath.Base(p) != s.Name {
				continue
			}
			log.Logf("sideload package arrived: %s", p)
			return p, nil
		case <-cancel:
			return "", ECancelled
		}
	}
}

// poll rescans the staging directory until a package arrives or cancel is
// closed. Unlike the inotify path it cannot tell a complete file from one
// still being written, so the pusher must write elsewhere and rename in.
func (s *Sideloader) poll(cancel <-chan struct{}) (string, error) {
	log.Msgf("waiting for a package in %s...", s.Dir)
	if s.Name != "" {
		p := filepath.Join(s.Dir, s.Name)
		stop := make(chan struct{})
		if cancel != nil {
			go func() {
				<-cancel
				close(stop)
			}()
		}
		if fileutil.WaitForChan(p, stop) {
			log.Logf("sideload package arrived: %s", p)
			return p, nil
		}
		return "", ECancelled
	}
	for {
		if p := s.existing(); p != "" {
			log.Logf("sideload package arrived: %s", p)
			return p, nil
		}
		select {
		case <-cancel:
			return "", ECancelled
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (s *Sideloader) existing() string {
	if s.Name != "" {
		p := filepath.Join(s.Dir, s.Name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
		return ""
	}
	ents, err := os.ReadDir(s.Dir)
	if err != nil || len(ents) == 0 {
		return ""
	}
	for _, e := range ents {
		if !e.IsDir() {
			return filepath.Join(s.Dir, e.Name())
		}
	}
	return ""
}
