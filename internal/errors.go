// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package internal

import "errors"

// Sentinel errors returned by the primitive, OPRF, and envelope layers. Each is mapped to a
// wire-stable ErrorCode by the top-level package.
var (
	ErrInvalidInput        = errors.New("invalid input length or ordering")
	ErrCrypto              = errors.New("cryptographic operation failed")
	ErrMemory              = errors.New("memory allocation or protection failed")
	ErrValidation          = errors.New("malformed structured field")
	ErrAuthentication      = errors.New("authentication tag mismatch")
	ErrInvalidPublicKey    = errors.New("invalid or identity group element")
	ErrZeroScalar          = errors.New("scalar reduced to zero")
	ErrStateReused         = errors.New("session state used out of order or after completion")
)
