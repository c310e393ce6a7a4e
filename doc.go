// Copyright (C) 2019-2026 the Recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Subpackages implement the boot-time recovery console: the minimal
// environment the bootloader starts when the main system cannot, or should
// not, boot.
//
// One boot of the console is one session. The flow is always the same:
//
//    - resolve the boot command: process arguments, then the control block
//      on the misc partition, then the cache command file. Whatever is
//      resolved is persisted back to the control block so an interruption
//      restarts the same operation.
//
//    - run the command: install an update (behind battery and boot-reason
//      gates, with a bounded retry budget), wipe data/cache, wipe the
//      partitions named by a signed wipe package, or wait for a sideloaded
//      package. A boot with no command drops to the menu.
//
//    - conclude: preserve logs to persistent storage, cache the locale,
//      release the control block, remove the command file, and reboot or
//      power off. Every exit path runs this cleanup exactly once.
//
// The console assumes nothing about the system it recovers. It carries its
// own log stack (ramdisk file, console, kernel pmsg mirror), its own volume
// table, and raw block-device wipe paths for when no filesystem can be
// trusted.
package recovery
