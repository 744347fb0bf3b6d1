// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

//go:build !unix

package secure

// lockPages is a no-op on platforms without mlock support. Degraded but correct, per this
// module's resource policy: absence of page-locking must never be fatal.
func lockPages(_ []byte) {}

// unlockPages is a no-op on platforms without mlock support.
func unlockPages(_ []byte) {}
