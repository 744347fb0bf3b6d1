// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package credential derives the randomized password the initiator uses to key the envelope,
// shared between registration-finalize and authentication so the two can never diverge.
package credential

import (
	"crypto/sha512"

	"github.com/nyxauth/opaque/internal/kdf"
)

// RandomizedPassword computes HKDF-Extract("", oprfOutput ‖ SHA-512(password)), stretching the
// OPRF output with a plain hash of the password itself so the envelope key depends on both.
func RandomizedPassword(password, oprfOutput []byte) []byte {
	h := sha512.Sum512(password)

	ikm := make([]byte, 0, len(oprfOutput)+len(h))
	ikm = append(ikm, oprfOutput...)
	ikm = append(ikm, h[:]...)

	return kdf.Extract(nil, ikm)
}
