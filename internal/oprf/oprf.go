// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package oprf implements the oblivious pseudorandom function the protocol uses to turn a
// low-entropy password into a high-entropy value neither party can precompute alone.
package oprf

import (
	"fmt"
	"io"

	"github.com/bytemare/crypto"

	"github.com/nyxauth/opaque/internal"
	igroup "github.com/nyxauth/opaque/internal/group"
	"github.com/nyxauth/opaque/internal/kdf"
	"github.com/nyxauth/opaque/internal/tag"
)

// Blind picks a random nonzero blinding scalar (read from src, or crypto/rand if src is nil) and
// returns H(input)·r along with r.
func Blind(src io.Reader, input []byte) (blindedElement, blind [32]byte, err error) {
	point, err := igroup.HashToGroup(input, tag.OPRFPointPrefix)
	if err != nil {
		return blindedElement, blind, err
	}

	blind, err = igroup.RandomNonZeroScalar(src)
	if err != nil {
		return blindedElement, blind, err
	}

	blindedElement, err = igroup.ScalarMult(blind, point)
	if err != nil {
		return blindedElement, blind, err
	}

	return blindedElement, blind, nil
}

// Evaluate computes blinded·oprfKey, the responder's half of the OPRF.
func Evaluate(blinded, oprfKey [32]byte) (evaluated [32]byte, err error) {
	return igroup.ScalarMult(oprfKey, blinded)
}

// Finalize unblinds evaluated with the blind scalar and hashes the transcript with input to
// produce the final 64-byte OPRF output.
func Finalize(input []byte, blind, evaluated [32]byte) (output []byte, err error) {
	s := igroup.G.NewScalar()
	if err = s.Decode(blind[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", internal.ErrCrypto, err)
	}

	inv, err := invert(s)
	if err != nil {
		return nil, err
	}

	unblinded, err := igroup.ScalarMult(inv, evaluated)
	if err != nil {
		return nil, err
	}

	prk := kdf.Extract(nil, append(append([]byte{}, input...), unblinded[:]...))

	return prk, nil
}

// invert returns the multiplicative inverse of s in the group's scalar field.
func invert(s *crypto.Scalar) (out [32]byte, err error) {
	inv := s.Copy().Invert()
	copy(out[:], inv.Encode())

	return out, nil
}

// DeriveKey derives a per-credential OPRF key from the responder's global seed and a
// per-credential salt (here, the registration request itself). The key is reduced to a nonzero
// scalar; a zero scalar can only happen with negligible probability and is treated as a crypto
// failure rather than retried, since the seed is meant to be stable across restarts.
func DeriveKey(seed, credentialSalt []byte) (key [32]byte, err error) {
	expanded, err := kdf.Expand(seed, append([]byte(tag.OPRFKeyPrefix), credentialSalt...), 32)
	if err != nil {
		return key, err
	}

	s := igroup.G.HashToScalar(expanded, []byte(tag.OPRFKeyPrefix))
	if s.IsZero() {
		return key, internal.ErrZeroScalar
	}

	copy(key[:], s.Encode())

	return key, nil
}

