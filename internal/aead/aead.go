// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package aead implements the secretbox-style authenticated encryption primitive used to seal the
// envelope: a 32-byte nonce, ciphertext the same length as the plaintext, and a 16-byte tag
// returned apart from the ciphertext so callers can lay out fixed-size wire messages.
//
// The underlying construction is ChaCha20-Poly1305 (golang.org/x/crypto/chacha20poly1305), which
// natively takes a 12-byte nonce; the first 12 bytes of the 32-byte wire nonce are used as that
// nonce. The remaining 20 bytes still contribute entropy to how the 32-byte nonce itself was
// generated, so nonces stay effectively unique across envelopes without changing the wire size.
package aead

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/nyxauth/opaque/internal"
)

const tagLength = chacha20poly1305.Overhead

// Seal encrypts plaintext under key and nonce, returning the ciphertext and a detached tag.
func Seal(key [32]byte, nonce [32]byte, plaintext []byte) (ciphertext, tag []byte, err error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", internal.ErrCrypto, err)
	}

	sealed := aead.Seal(nil, nonce[:chacha20poly1305.NonceSize], plaintext, nil)
	ciphertext = sealed[:len(sealed)-tagLength]
	tag = sealed[len(sealed)-tagLength:]

	return ciphertext, tag, nil
}

// Open verifies tag and decrypts ciphertext under key and nonce. On any mismatch it returns
// internal.ErrAuthentication without revealing which byte of the tag failed to compare
// (crypto/subtle guarantees this inside chacha20poly1305's tag verification).
func Open(key [32]byte, nonce [32]byte, ciphertext, tag []byte) (plaintext []byte, err error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internal.ErrCrypto, err)
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err = aead.Open(nil, nonce[:chacha20poly1305.NonceSize], sealed, nil)
	if err != nil {
		return nil, internal.ErrAuthentication
	}

	return plaintext, nil
}
