// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package handle

import (
	"testing"

	"github.com/nyxauth/opaque"
	"github.com/nyxauth/opaque/internal/group"
)

func fixedResponderKeyPair(t *testing.T) (sk, pk [32]byte) {
	t.Helper()

	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i + 1)
	}

	sk, pk, err := group.DeriveKeyPair(seed[:])
	if err != nil {
		t.Fatalf("deriving responder key pair: %v", err)
	}

	return sk, pk
}

func TestHandleRegistrationAuthenticationRoundTrip(t *testing.T) {
	responderSK, responderPK := fixedResponderKeyPair(t)

	var oprfSeed [32]byte
	for i := range oprfSeed {
		oprfSeed[i] = byte(0x40 + i)
	}

	var masterKey [32]byte
	masterKey[31] = 0xAA

	password := []byte("correct horse")

	server, status := CreateResponder(responderSK, oprfSeed)
	if status != 0 {
		t.Fatalf("CreateResponder: status %d", status)
	}
	defer DestroyResponder(server)

	client, status := Create(responderPK)
	if status != 0 {
		t.Fatalf("Create: status %d", status)
	}
	defer Destroy(client)

	regState := StateCreate()
	defer StateDestroy(regState)

	req := make([]byte, 32)
	if status := CreateRegistrationRequest(client, password, regState, req); status != 0 {
		t.Fatalf("CreateRegistrationRequest: status %d", status)
	}

	resp := make([]byte, 96)
	credHandle, status := ResponderCreateRegistrationResponse(server, req, resp)
	if status != 0 {
		t.Fatalf("ResponderCreateRegistrationResponse: status %d", status)
	}

	record := make([]byte, 208)
	var initiatorPK [32]byte
	if status := FinalizeRegistration(client, resp, masterKey, regState, record, &initiatorPK); status != 0 {
		t.Fatalf("FinalizeRegistration: status %d", status)
	}

	if status := ResponderIngestRecord(credHandle, record, initiatorPK); status != 0 {
		t.Fatalf("ResponderIngestRecord: status %d", status)
	}

	authState := StateCreate()
	defer StateDestroy(authState)

	ke1 := make([]byte, 96)
	if status := GenerateKE1(client, password, authState, ke1); status != 0 {
		t.Fatalf("GenerateKE1: status %d", status)
	}

	responderState := ResponderStateCreate()
	defer ResponderStateDestroy(responderState)

	ke2 := make([]byte, 336)
	if status := ResponderGenerateKE2(server, ke1, credHandle, responderState, ke2); status != 0 {
		t.Fatalf("ResponderGenerateKE2: status %d", status)
	}

	ke3 := make([]byte, 64)
	if status := GenerateKE3(client, ke2, authState, ke3); status != 0 {
		t.Fatalf("GenerateKE3: status %d", status)
	}

	clientSessionKey := make([]byte, 64)
	clientMasterKey := make([]byte, 32)
	if status := Finish(client, authState, clientSessionKey, clientMasterKey); status != 0 {
		t.Fatalf("Finish: status %d", status)
	}

	serverSessionKey := make([]byte, 64)
	if status := ResponderFinish(server, responderState, ke3, serverSessionKey); status != 0 {
		t.Fatalf("ResponderFinish: status %d", status)
	}

	for i := range clientSessionKey {
		if clientSessionKey[i] != serverSessionKey[i] {
			t.Fatalf("client and server session keys differ")
		}
	}

	for i := range masterKey {
		if clientMasterKey[i] != masterKey[i] {
			t.Fatalf("recovered master key does not match the one sealed at registration")
		}
	}
}

func TestHandleMalformedKE2(t *testing.T) {
	responderPK := getDefaultResponderPK()

	client, status := Create(responderPK)
	if status != 0 {
		t.Fatalf("Create: status %d", status)
	}
	defer Destroy(client)

	state := StateCreate()
	defer StateDestroy(state)

	if status := GenerateKE1(client, []byte("correct horse"), state, make([]byte, 96)); status != 0 {
		t.Fatalf("GenerateKE1: status %d", status)
	}

	truncatedKE2 := make([]byte, 335)

	status = GenerateKE3(client, truncatedKE2, state, make([]byte, 64))
	if status != opaque.ErrCodeInvalidInput.Status() {
		t.Fatalf("expected InvalidInput (%d) on a truncated KE2, got %d", opaque.ErrCodeInvalidInput.Status(), status)
	}
}

func TestHandleOutOfOrder(t *testing.T) {
	client, status := CreateDefault()
	if status != 0 {
		t.Fatalf("CreateDefault: status %d", status)
	}
	defer Destroy(client)

	state := StateCreate()
	defer StateDestroy(state)

	status = GenerateKE3(client, make([]byte, 336), state, make([]byte, 64))
	if status != opaque.ErrCodeInvalidInput.Status() {
		t.Fatalf("expected InvalidInput (%d) on an out-of-order call, got %d", opaque.ErrCodeInvalidInput.Status(), status)
	}
}

func TestGetVersionIdempotent(t *testing.T) {
	first := GetVersion()
	second := GetVersion()

	if first != second {
		t.Fatalf("GetVersion returned different values across calls: %q vs %q", first, second)
	}

	if first == "" {
		t.Fatalf("GetVersion returned an empty string")
	}
}

func TestUnknownHandleIsInvalidInput(t *testing.T) {
	if status := GenerateKE1(Handle(999999), []byte("x"), StateHandle(999999), make([]byte, 96)); status != opaque.ErrCodeInvalidInput.Status() {
		t.Fatalf("expected InvalidInput (%d) for an unknown handle, got %d", opaque.ErrCodeInvalidInput.Status(), status)
	}
}
