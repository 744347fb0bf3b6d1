// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package opaque implements the core of an OPAQUE-style augmented password-authenticated key
// exchange: an oblivious PRF, an authenticated-encryption envelope, and a mutually authenticated
// three-message key-exchange, fixed to a single 32-byte prime-order elliptic-curve group.
//
// Registration is a two-message exchange (request → response → record); authentication is a
// three-message exchange (KE1 → KE2 → KE3) yielding a shared session key and, for the initiator,
// recovery of the long-term master key sealed at registration time.
package opaque

// Version is the module's semantic version string, returned by GetVersion for parity with the
// handle-based dispatch layer's opaque_client_get_version.
const Version = "1.0.0"

// GetVersion returns the library version string. Calling it repeatedly always returns the same
// value; it has no side effects and touches no session state.
func GetVersion() string {
	return Version
}
