// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package envelope

import (
	"testing"

	"github.com/nyxauth/opaque/internal"
	"github.com/nyxauth/opaque/internal/group"
)

func fixedKeyPair(t *testing.T, seed byte) (sk, pk [32]byte) {
	t.Helper()

	var s [32]byte
	for i := range s {
		s[i] = seed + byte(i)
	}

	sk, pk, err := group.DeriveKeyPair(s[:])
	if err != nil {
		t.Fatalf("DeriveKeyPair: %v", err)
	}

	return sk, pk
}

func TestSealOpenRoundTrip(t *testing.T) {
	responderSK, responderPK := fixedKeyPair(t, 0x01)
	initiatorSK, initiatorPK := fixedKeyPair(t, 0x40)
	_ = responderSK

	randomizedPwd := []byte("randomized-password-material-for-testing-only-000000000000000")

	var masterKey [32]byte
	for i := 0; i < 31; i++ {
		masterKey[i] = 0
	}
	masterKey[31] = 0xAA

	env, err := Seal(nil, randomizedPwd, responderPK, initiatorSK, initiatorPK, masterKey)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	serialized := env.Serialize()
	if len(serialized) != internal.EnvelopeLength {
		t.Fatalf("expected %d-byte envelope, got %d", internal.EnvelopeLength, len(serialized))
	}

	roundTripped := Deserialize(serialized)

	gotResponderPK, gotInitiatorSK, gotInitiatorPK, gotMasterKey, err := Open(roundTripped, randomizedPwd, responderPK)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if gotResponderPK != responderPK {
		t.Fatalf("responder public key mismatch after Open")
	}

	if gotInitiatorSK != initiatorSK {
		t.Fatalf("initiator secret key mismatch after Open")
	}

	if gotInitiatorPK != initiatorPK {
		t.Fatalf("initiator public key mismatch after Open")
	}

	if gotMasterKey != masterKey {
		t.Fatalf("master key not recovered byte-exact")
	}
}

func TestOpenWrongPassword(t *testing.T) {
	_, responderPK := fixedKeyPair(t, 0x01)
	initiatorSK, initiatorPK := fixedKeyPair(t, 0x40)

	var masterKey [32]byte
	masterKey[31] = 0xAA

	env, err := Seal(nil, []byte("correct-randomized-password"), responderPK, initiatorSK, initiatorPK, masterKey)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if _, _, _, _, err := Open(env, []byte("wrong-randomized-password"), responderPK); err == nil {
		t.Fatalf("expected Open to fail with the wrong randomized password")
	}
}

func TestOpenWrongResponder(t *testing.T) {
	_, responderPK := fixedKeyPair(t, 0x01)
	_, otherResponderPK := fixedKeyPair(t, 0x99)
	initiatorSK, initiatorPK := fixedKeyPair(t, 0x40)

	var masterKey [32]byte
	masterKey[31] = 0xAA

	randomizedPwd := []byte("randomized-password")

	env, err := Seal(nil, randomizedPwd, responderPK, initiatorSK, initiatorPK, masterKey)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if _, _, _, _, err := Open(env, randomizedPwd, otherResponderPK); err == nil {
		t.Fatalf("expected Open to fail when the configured responder key differs from registration")
	}
}

func TestOpenTamperedOuterTag(t *testing.T) {
	_, responderPK := fixedKeyPair(t, 0x01)
	initiatorSK, initiatorPK := fixedKeyPair(t, 0x40)

	var masterKey [32]byte
	masterKey[31] = 0xAA

	randomizedPwd := []byte("randomized-password")

	env, err := Seal(nil, randomizedPwd, responderPK, initiatorSK, initiatorPK, masterKey)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	env.OuterTag[0] ^= 0xFF

	if _, _, _, _, err := Open(env, randomizedPwd, responderPK); err == nil {
		t.Fatalf("expected Open to reject a tampered outer tag")
	}
}
