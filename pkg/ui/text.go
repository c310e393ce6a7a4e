// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"
)

// Text is a serial-console UI. Output is plain lines; menus are numbered and
// selections read one line at a time. While the text view is hidden, Print
// output is buffered and replayed when it is shown.
type Text struct {
	mtx sync.Mutex
	out io.Writer
	in  *bufio.Reader

	textVisible bool
	textEver    bool
	pending     []string

	stageCur, stageMax int
}

var _ UI = (*Text)(nil)

func NewText(out io.Writer, in io.Reader) *Text {
	return &Text{out: out, in: bufio.NewReader(in)}
}

func (t *Text) Print(format string, args ...interface{}) {
	log.Logf(format, args...)
	t.mtx.Lock()
	defer t.mtx.Unlock()
	line := fmt.Sprintf(format, args...)
	if !t.textVisible {
		t.pending = append(t.pending, line)
		return
	}
	fmt.Fprint(t.out, line)
}

func (t *Text) SetBackground(b Background) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if b == BackgroundError {
		fmt.Fprintln(t.out, "*** ERROR ***")
	}
}

func (t *Text) SetProgressType(ProgressType) {}

func (t *Text) SetStage(current, max int) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.stageCur, t.stageMax = current, max
}

func (t *Text) ShowText(visible bool) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.textVisible = visible
	if !visible {
		return
	}
	t.textEver = true
	for _, l := range t.pending {
		fmt.Fprint(t.out, l)
	}
	t.pending = nil
}

func (t *Text) IsTextVisible() bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.textVisible
}

func (t *Text) WasTextEverVisible() bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.textEver
}

func (t *Text) Menu(headers, items []string, initial int, menuOnly bool) int {
	t.mtx.Lock()
	for _, h := range headers {
		fmt.Fprintln(t.out, h)
	}
	if t.stageMax > 0 {
		fmt.Fprintf(t.out, "stage %d/%d\n", t.stageCur, t.stageMax)
	}
	for i, item := range items {
		fmt.Fprintf(t.out, "  %d) %s\n", i, item)
	}
	fmt.Fprint(t.out, "> ")
	t.mtx.Unlock()

	for {
		line, err := t.in.ReadString('\n')
		if err != nil {
			return KTimedOut
		}
		sel, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || sel < 0 || sel >= len(items) {
			fmt.Fprint(t.out, "> ")
			continue
		}
		return sel
	}
}
