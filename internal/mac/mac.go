// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package mac wraps HMAC-SHA-512 with a constant-time comparison. No third-party HMAC
// implementation appears anywhere in the reference corpus; crypto/hmac is what the teacher's own
// wrapper types delegate to, so it is used here directly rather than reimplemented.
package mac

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
)

// Sum returns HMAC-SHA-512(key, data...).
func Sum(key []byte, data ...[]byte) []byte {
	h := hmac.New(sha512.New, key)
	for _, d := range data {
		h.Write(d)
	}

	return h.Sum(nil)
}

// Equal performs a constant-time comparison of two MACs. Its running time depends only on the
// lengths of a and b, never on the contents of either argument.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
