// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package wipe

import (
	"archive/tar"
	"bytes"
	"crypto/ed25519"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/fileutil"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/log"
	"github.com/RickyBobby2nd/android-bootable-recovery/pkg/ui"

	"github.com/ulikunitz/xz"
)

// The wipe package sits on the misc device past the control block, at a
// fixed offset agreed with whoever wrote it there.
const WipePackageOffset = 16 * 1024

var (
	EShortPackage = errors.New("wipe package shorter than its signature")
	EBadSignature = errors.New("wipe package signature invalid")
	ENoMetadata   = errors.New("wipe package has no metadata entry")
	ENotBrick     = errors.New("wipe package is not a brick package")
	EWrongDevice  = errors.New("wipe package built for a different device")
	EWrongSerial  = errors.New("wipe package built for a different serial")
)

// wipeMeta is the parsed metadata entry of a wipe package.
type wipeMeta struct {
	otaType   string
	preDevice string
	serialNo  string
}

// ReadWipePackage pulls size bytes from the fixed offset on the misc device.
func ReadWipePackage(miscDev string, size int64) ([]byte, error) {
	f, err := os.Open(miscDev)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, size)
	_, err = f.ReadAt(buf, WipePackageOffset)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// verifyPackage checks the trailing signature against the trusted keys and
// returns the payload.
func (e *Engine) verifyPackage(pkg []byte) ([]byte, error) {
	if len(pkg) <= ed25519.SignatureSize {
		return nil, EShortPackage
	}
	payload := pkg[:len(pkg)-ed25519.SignatureSize]
	sig := pkg[len(pkg)-ed25519.SignatureSize:]
	for _, key := range e.TrustedKeys {
		if len(key) != ed25519.PublicKeySize {
			continue
		}
		if ed25519.Verify(ed25519.PublicKey(key), payload, sig) {
			return payload, nil
		}
	}
	return nil, EBadSignature
}

// parseWipeMeta decompresses the payload and extracts its metadata entry.
func parseWipeMeta(payload []byte) (*wipeMeta, error) {
	xr, err := xz.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	tr := tar.NewReader(xr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, ENoMetadata
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimPrefix(hdr.Name, "./") != "META-INF/com/android/metadata" {
			continue
		}
		buf, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		m := &wipeMeta{}
		for _, line := range strings.Split(string(buf), "\n") {
			k, v, ok := strings.Cut(strings.TrimSpace(line), "=")
			if !ok {
				continue
			}
			switch k {
			case "ota-type":
				m.otaType = v
			case "pre-device":
				m.preDevice = v
			case "serialno":
				m.serialNo = v
			}
		}
		return m, nil
	}
}

// checkMeta enforces that the package is a brick package built for this
// device, and this unit when it names a serial.
func (e *Engine) checkMeta(m *wipeMeta) error {
	if m.otaType != "BRICK" {
		return ENotBrick
	}
	if m.preDevice != e.Product {
		log.Logf("package device %q, this device %q", m.preDevice, e.Product)
		return EWrongDevice
	}
	if m.serialNo != "" && m.serialNo != e.Serial {
		log.Logf("package serial %q, this unit %q", m.serialNo, e.Serial)
		return EWrongSerial
	}
	return nil
}

// WipeAB validates the wipe package, then securely erases every partition
// named in listPath. Validation failures fail the operation; individual
// partition failures after a valid package are logged but do not, since a
// partly bricked device must still report the brick as done.
func (e *Engine) WipeAB(miscDev string, pkgSize int64, listPath string) bool {
	e.Logs.SetModified()
	e.UI.SetBackground(ui.BackgroundErasing)

	pkg, err := ReadWipePackage(miscDev, pkgSize)
	if err != nil {
		log.Msgf("failed to read wipe package: %s", err)
		return false
	}
	payload, err := e.verifyPackage(pkg)
	if err != nil {
		log.Msgf("failed to verify wipe package: %s", err)
		return false
	}
	if !fileutil.IsXZData(payload) {
		log.Msgf("wipe package payload is not an xz archive")
		return false
	}
	meta, err := parseWipeMeta(payload)
	if err != nil {
		log.Msgf("failed to parse wipe package: %s", err)
		return false
	}
	if err = e.checkMeta(meta); err != nil {
		log.Msgf("wipe package rejected: %s", err)
		return false
	}

	parts, err := fileutil.ReadConfigLines(listPath, 0)
	if err != nil {
		log.Msgf("failed to read partition list %s: %s", listPath, err)
		return false
	}
	log.Msgf("wiping %d partitions...", len(parts))
	for _, dev := range parts {
		ops, err := e.openBlk(dev)
		if err != nil {
			log.Logf("open %s: %s", dev, err)
			continue
		}
		if err = secureWipe(dev, ops); err != nil {
			log.Logf("wipe %s: %s", dev, err)
		}
		if err = ops.Close(); err != nil {
			log.Logf("close %s: %s", dev, err)
		}
	}
	return true
}
