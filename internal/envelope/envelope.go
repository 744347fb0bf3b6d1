// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package envelope implements the sealing and opening of the initiator's long-term key material
// under a password-derived key, bound to the responder's identity.
package envelope

import (
	"io"

	"github.com/nyxauth/opaque/internal"
	"github.com/nyxauth/opaque/internal/aead"
	"github.com/nyxauth/opaque/internal/group"
	"github.com/nyxauth/opaque/internal/kdf"
	"github.com/nyxauth/opaque/internal/mac"
	"github.com/nyxauth/opaque/internal/rand"
	"github.com/nyxauth/opaque/internal/tag"
)

// Envelope is the 176-byte wire structure: nonce ‖ ciphertext ‖ tag(outer ‖ inner).
type Envelope struct {
	Nonce      [internal.EnvelopeNonceLength]byte
	Ciphertext [internal.EnvelopePlaintextLength]byte
	OuterTag   [internal.EnvelopeOuterTagLength]byte
	InnerTag   [internal.EnvelopeInnerTagLength]byte
}

// Serialize concatenates the envelope's fields into its canonical 176-byte wire form.
func (e *Envelope) Serialize() []byte {
	out := make([]byte, 0, internal.EnvelopeLength)
	out = append(out, e.Nonce[:]...)
	out = append(out, e.Ciphertext[:]...)
	out = append(out, e.OuterTag[:]...)
	out = append(out, e.InnerTag[:]...)

	return out
}

// Deserialize parses a 176-byte buffer into an Envelope. It does not check len(data) itself: bytes
// past internal.EnvelopeLength are ignored and a shorter buffer can panic, so the caller must have
// already checked len(data) == internal.EnvelopeLength. Every caller in this module validates sizes
// before invoking any cryptographic code per invariant 4.
func Deserialize(data []byte) *Envelope {
	e := &Envelope{}
	offset := 0

	copy(e.Nonce[:], data[offset:offset+internal.EnvelopeNonceLength])
	offset += internal.EnvelopeNonceLength

	copy(e.Ciphertext[:], data[offset:offset+internal.EnvelopePlaintextLength])
	offset += internal.EnvelopePlaintextLength

	copy(e.OuterTag[:], data[offset:offset+internal.EnvelopeOuterTagLength])
	offset += internal.EnvelopeOuterTagLength

	copy(e.InnerTag[:], data[offset:offset+internal.EnvelopeInnerTagLength])

	return e
}

func envelopeKey(randomizedPwd []byte, nonce [internal.EnvelopeNonceLength]byte) ([32]byte, error) {
	var key [32]byte

	expanded, err := kdf.Expand(randomizedPwd, append([]byte(tag.EnvelopeKey), nonce[:]...), 32)
	if err != nil {
		return key, err
	}

	copy(key[:], expanded)

	return key, nil
}

func outerMACKey(randomizedPwd []byte, nonce [internal.EnvelopeNonceLength]byte) ([]byte, error) {
	return kdf.Expand(randomizedPwd, append([]byte(tag.EnvelopeMAC), nonce[:]...), 32)
}

// Seal implements the seven-step envelope construction: generate a nonce, derive the envelope
// key and outer MAC key from the randomized password, AEAD-seal the plaintext, and bind the
// result to the responder/initiator identities with an outer HMAC tag.
func Seal(
	src io.Reader,
	randomizedPwd []byte,
	responderPK, initiatorSK, initiatorPK [32]byte,
	masterKey [32]byte,
) (*Envelope, error) {
	nonceBytes, err := rand.Bytes(src, internal.EnvelopeNonceLength)
	if err != nil {
		return nil, err
	}

	var nonce [internal.EnvelopeNonceLength]byte
	copy(nonce[:], nonceBytes)

	key, err := envelopeKey(randomizedPwd, nonce)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, 0, internal.EnvelopePlaintextLength)
	plaintext = append(plaintext, initiatorSK[:]...)
	plaintext = append(plaintext, responderPK[:]...)
	plaintext = append(plaintext, masterKey[:]...)

	ciphertext, innerTag, err := aead.Seal(key, nonce, plaintext)
	if err != nil {
		return nil, err
	}

	macKey, err := outerMACKey(randomizedPwd, nonce)
	if err != nil {
		return nil, err
	}

	outerTag := mac.Sum(macKey, nonce[:], responderPK[:], initiatorPK[:])[:internal.EnvelopeOuterTagLength]

	env := &Envelope{Nonce: nonce}
	copy(env.Ciphertext[:], ciphertext)
	copy(env.OuterTag[:], outerTag)
	copy(env.InnerTag[:], innerTag)

	return env, nil
}

// Open recomputes both derived keys, verifies both tags in constant time, decrypts, re-derives
// the initiator's public key from the recovered secret key, and checks that the witnessed
// responder public key matches knownResponderPK. Any mismatch returns internal.ErrAuthentication.
// An inner (AEAD) tag failure returns before the outer tag is computed, so its timing differs from
// that of an outer-tag or responder-key mismatch.
func Open(
	env *Envelope,
	randomizedPwd []byte,
	knownResponderPK [32]byte,
) (responderPK, initiatorSK, initiatorPK [32]byte, masterKey [32]byte, err error) {
	key, err := envelopeKey(randomizedPwd, env.Nonce)
	if err != nil {
		return responderPK, initiatorSK, initiatorPK, masterKey, err
	}

	plaintext, err := aead.Open(key, env.Nonce, env.Ciphertext[:], env.InnerTag[:])
	if err != nil {
		return responderPK, initiatorSK, initiatorPK, masterKey, internal.ErrAuthentication
	}

	copy(initiatorSK[:], plaintext[:32])
	copy(responderPK[:], plaintext[32:64])
	copy(masterKey[:], plaintext[64:96])

	initiatorPK, err = group.BasePointMult(initiatorSK)
	if err != nil {
		return responderPK, initiatorSK, initiatorPK, masterKey, internal.ErrAuthentication
	}

	macKey, err := outerMACKey(randomizedPwd, env.Nonce)
	if err != nil {
		return responderPK, initiatorSK, initiatorPK, masterKey, err
	}

	expectedOuterTag := mac.Sum(macKey, env.Nonce[:], responderPK[:], initiatorPK[:])[:internal.EnvelopeOuterTagLength]
	if !mac.Equal(expectedOuterTag, env.OuterTag[:]) {
		return responderPK, initiatorSK, initiatorPK, masterKey, internal.ErrAuthentication
	}

	if !mac.Equal(responderPK[:], knownResponderPK[:]) {
		return responderPK, initiatorSK, initiatorPK, masterKey, internal.ErrAuthentication
	}

	return responderPK, initiatorSK, initiatorPK, masterKey, nil
}
