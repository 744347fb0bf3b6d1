// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package group fixes OPAQUE to a single 32-byte prime-order group (Ristretto255) and wraps
// github.com/bytemare/crypto/group's scalar and element arithmetic behind the fixed-size byte
// interface the rest of this module expects.
package group

import (
	"fmt"
	"io"

	"github.com/bytemare/crypto"

	"github.com/nyxauth/opaque/internal"
	"github.com/nyxauth/opaque/internal/rand"
)

// G is the fixed ciphersuite group for this protocol.
const G = crypto.Ristretto255Sha512

// DeriveKeyPair reduces seed to a valid non-zero scalar and returns the corresponding key pair.
func DeriveKeyPair(seed []byte) (sk, pk [32]byte, err error) {
	scalar := G.HashToScalar(seed, []byte("Opaque-DeriveKeyPair"))
	if scalar.IsZero() {
		return sk, pk, internal.ErrZeroScalar
	}

	point := G.Base().Multiply(scalar)

	copy(sk[:], scalar.Encode())
	copy(pk[:], point.Encode())

	return sk, pk, nil
}

// ScalarMult multiplies the decoded point by the decoded scalar, returning InvalidPublicKey if
// point does not decode to a valid, non-identity element.
func ScalarMult(scalar, point [32]byte) (out [32]byte, err error) {
	s := G.NewScalar()
	if err = s.Decode(scalar[:]); err != nil {
		return out, fmt.Errorf("%w: %w", internal.ErrCrypto, err)
	}

	p := G.NewElement()
	if err = p.Decode(point[:]); err != nil {
		return out, fmt.Errorf("%w: %w", internal.ErrInvalidPublicKey, err)
	}

	if p.IsIdentity() {
		return out, internal.ErrInvalidPublicKey
	}

	result := p.Multiply(s)
	copy(out[:], result.Encode())

	return out, nil
}

// BasePointMult returns scalar·G.
func BasePointMult(scalar [32]byte) (pk [32]byte, err error) {
	s := G.NewScalar()
	if err = s.Decode(scalar[:]); err != nil {
		return pk, fmt.Errorf("%w: %w", internal.ErrCrypto, err)
	}

	p := G.Base().Multiply(s)
	copy(pk[:], p.Encode())

	return pk, nil
}

// ValidatePublicKey checks that pk decodes to a valid, non-identity element of the group.
func ValidatePublicKey(pk [32]byte) error {
	p := G.NewElement()
	if err := p.Decode(pk[:]); err != nil {
		return fmt.Errorf("%w: %w", internal.ErrInvalidPublicKey, err)
	}

	if p.IsIdentity() {
		return internal.ErrInvalidPublicKey
	}

	return nil
}

// RandomNonZeroScalar returns a scalar derived from src (crypto/rand.Reader if src is nil),
// regenerating until it is non-zero. Reading from src rather than calling the group library's own
// Random() lets tests and vector runners drive the protocol with a deterministic source.
func RandomNonZeroScalar(src io.Reader) ([32]byte, error) {
	var out [32]byte

	for {
		seed, err := rand.Bytes(src, SeedLength)
		if err != nil {
			return out, err
		}

		s := G.HashToScalar(seed, []byte("Opaque-RandomScalar"))
		if !s.IsZero() {
			copy(out[:], s.Encode())
			return out, nil
		}
	}
}

// SeedLength is the length of the random seed material consumed to derive a scalar.
const SeedLength = 32

// HashToGroup deterministically maps input to a non-identity element of the group, constant-time
// with respect to input.
func HashToGroup(input []byte, dst string) ([32]byte, error) {
	var out [32]byte

	p := G.HashToGroup(input, []byte(dst))
	if p.IsIdentity() {
		return out, internal.ErrInvalidPublicKey
	}

	copy(out[:], p.Encode())

	return out, nil
}
