// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package kdf wraps SHA-512 HKDF extract/expand for the protocol's key schedule.
package kdf

import (
	"crypto/sha512"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/nyxauth/opaque/internal"
)

// Extract implements HKDF-Extract with SHA-512, returning a 64-byte pseudorandom key.
func Extract(salt, ikm []byte) []byte {
	return hkdf.Extract(sha512.New, ikm, salt)
}

// Expand implements HKDF-Expand with SHA-512, returning length bytes of output key material.
func Expand(prk, info []byte, length int) ([]byte, error) {
	r := hkdf.Expand(sha512.New, prk, info)

	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("%w: %w", internal.ErrCrypto, err)
	}

	return out, nil
}
