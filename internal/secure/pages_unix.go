// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

//go:build unix

package secure

import "golang.org/x/sys/unix"

// lockPages best-effort mlocks data so it is never written to swap. A failure is silently
// ignored: page locking is defense in depth, not a correctness requirement.
func lockPages(data []byte) {
	if len(data) == 0 {
		return
	}

	_ = unix.Mlock(data)
}

// unlockPages reverses lockPages.
func unlockPages(data []byte) {
	if len(data) == 0 {
		return
	}

	_ = unix.Munlock(data)
}
