// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package rand fills buffers from a cryptographically secure source, defaulting to crypto/rand
// but accepting an override so tests can run the protocol with deterministic transcripts.
package rand

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/nyxauth/opaque/internal"
)

// Bytes returns n bytes read from src, or from crypto/rand.Reader if src is nil.
func Bytes(src io.Reader, n int) ([]byte, error) {
	if src == nil {
		src = rand.Reader
	}

	b := make([]byte, n)
	if _, err := io.ReadFull(src, b); err != nil {
		return nil, fmt.Errorf("%w: %w", internal.ErrCrypto, err)
	}

	return b, nil
}
