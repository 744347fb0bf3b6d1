// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import (
	"errors"
	"testing"

	"github.com/nyxauth/opaque/internal/group"
)

// fixedResponderKeyPair reproduces scenario A's responder seed sk = 01 02 … 20, yielding
// pk = sk·G, resolved through this module's seed-reduction step so the scalar is always valid
// regardless of whether the raw bytes happen to be canonical.
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

func fixedOPRFSeed() [32]byte {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(0x40 + i)
	}

	return seed
}

func fixedMasterKey() [32]byte {
	var masterKey [32]byte
	masterKey[31] = 0xAA

	return masterKey
}

// register runs a full registration against server and returns the completed CredentialFile.
func register(t *testing.T, client *Client, server *Server, password []byte, masterKey [32]byte) *CredentialFile {
	t.Helper()

	state := NewClientState()

	req, err := client.CreateRegistrationRequest(state, password)
	if err != nil {
		t.Fatalf("CreateRegistrationRequest: %v", err)
	}

	resp, cred, err := server.CreateRegistrationResponse(req)
	if err != nil {
		t.Fatalf("CreateRegistrationResponse: %v", err)
	}

	record, initiatorPK, err := client.FinalizeRegistration(state, resp, masterKey)
	if err != nil {
		t.Fatalf("FinalizeRegistration: %v", err)
	}

	cred.Record = record
	cred.InitiatorPK = initiatorPK

	return cred
}

func TestRegistrationAuthenticationRoundTrip(t *testing.T) {
	responderSK, responderPK := fixedResponderKeyPair(t)
	oprfSeed := fixedOPRFSeed()
	masterKey := fixedMasterKey()
	password := []byte("correct horse")

	server, err := NewServer(responderSK, oprfSeed)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	client, err := NewClient(responderPK)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	cred := register(t, client, server, password, masterKey)

	clientState := NewClientState()

	ke1, err := client.GenerateKE1(clientState, password)
	if err != nil {
		t.Fatalf("GenerateKE1: %v", err)
	}

	serverState := NewServerState()

	ke2, err := server.GenerateKE2(serverState, ke1, cred)
	if err != nil {
		t.Fatalf("GenerateKE2: %v", err)
	}

	ke3, err := client.GenerateKE3(clientState, ke2)
	if err != nil {
		t.Fatalf("GenerateKE3: %v", err)
	}

	clientSessionKey, clientMasterKey, err := client.Finish(clientState)
	if err != nil {
		t.Fatalf("client.Finish: %v", err)
	}

	serverSessionKey, err := server.Finish(serverState, ke3)
	if err != nil {
		t.Fatalf("server.Finish: %v", err)
	}

	if clientSessionKey != serverSessionKey {
		t.Fatalf("client and server derived different session keys")
	}

	if clientMasterKey != masterKey {
		t.Fatalf("initiator did not recover the master key byte-exact")
	}
}

func TestWrongPasswordFailsAuthentication(t *testing.T) {
	responderSK, responderPK := fixedResponderKeyPair(t)
	oprfSeed := fixedOPRFSeed()
	masterKey := fixedMasterKey()

	server, err := NewServer(responderSK, oprfSeed)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	client, err := NewClient(responderPK)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	cred := register(t, client, server, []byte("correct horse"), masterKey)

	clientState := NewClientState()

	ke1, err := client.GenerateKE1(clientState, []byte("correct horsf"))
	if err != nil {
		t.Fatalf("GenerateKE1: %v", err)
	}

	serverState := NewServerState()

	ke2, err := server.GenerateKE2(serverState, ke1, cred)
	if err != nil {
		t.Fatalf("GenerateKE2: %v", err)
	}

	_, err = client.GenerateKE3(clientState, ke2)
	if err == nil {
		t.Fatalf("expected GenerateKE3 to fail with the wrong password")
	}

	var opaqueErr *Error
	if !errors.As(err, &opaqueErr) || opaqueErr.Status() != ErrCodeAuthentication.Status() {
		t.Fatalf("expected AuthenticationError (%d), got %v", ErrCodeAuthentication.Status(), err)
	}
}

func TestWrongResponderFailsAuthentication(t *testing.T) {
	responderSK, responderPK := fixedResponderKeyPair(t)

	var otherSeed [32]byte
	for i := range otherSeed {
		otherSeed[i] = byte(0xC0 + i)
	}

	_, otherResponderPK, err := group.DeriveKeyPair(otherSeed[:])
	if err != nil {
		t.Fatalf("deriving other responder key pair: %v", err)
	}

	oprfSeed := fixedOPRFSeed()
	masterKey := fixedMasterKey()
	password := []byte("correct horse")

	server, err := NewServer(responderSK, oprfSeed)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	registeringClient, err := NewClient(responderPK)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	cred := register(t, registeringClient, server, password, masterKey)

	authenticatingClient, err := NewClient(otherResponderPK)
	if err != nil {
		t.Fatalf("NewClient (wrong responder): %v", err)
	}

	clientState := NewClientState()

	ke1, err := authenticatingClient.GenerateKE1(clientState, password)
	if err != nil {
		t.Fatalf("GenerateKE1: %v", err)
	}

	serverState := NewServerState()

	ke2, err := server.GenerateKE2(serverState, ke1, cred)
	if err != nil {
		t.Fatalf("GenerateKE2: %v", err)
	}

	_, err = authenticatingClient.GenerateKE3(clientState, ke2)
	if err == nil {
		t.Fatalf("expected GenerateKE3 to fail when the configured responder key differs")
	}

	var opaqueErr *Error
	if !errors.As(err, &opaqueErr) || opaqueErr.Status() != ErrCodeAuthentication.Status() {
		t.Fatalf("expected AuthenticationError (%d), got %v", ErrCodeAuthentication.Status(), err)
	}
}

func TestGenerateKE3OutOfOrder(t *testing.T) {
	_, responderPK := fixedResponderKeyPair(t)

	client, err := NewClient(responderPK)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	state := NewClientState()

	if _, err := client.GenerateKE3(state, nil); err == nil {
		t.Fatalf("expected GenerateKE3 on a fresh state to fail")
	} else {
		var opaqueErr *Error
		if !errors.As(err, &opaqueErr) || opaqueErr.Status() != ErrCodeInvalidInput.Status() {
			t.Fatalf("expected InvalidInput (%d), got %v", ErrCodeInvalidInput.Status(), err)
		}
	}

	// Out-of-order rejection must not have mutated the state: it must still be destroyable.
	state.Destroy()
}

func TestFinishOutOfOrder(t *testing.T) {
	_, responderPK := fixedResponderKeyPair(t)

	client, err := NewClient(responderPK)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	state := NewClientState()

	if _, _, err := client.Finish(state); err == nil {
		t.Fatalf("expected Finish on a fresh state to fail")
	}

	state.Destroy()
}

func TestClientStateZeroizedOnDestroy(t *testing.T) {
	_, responderPK := fixedResponderKeyPair(t)

	client, err := NewClient(responderPK)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	state := NewClientState()

	if _, err := client.CreateRegistrationRequest(state, []byte("correct horse")); err != nil {
		t.Fatalf("CreateRegistrationRequest: %v", err)
	}

	if state.password == nil || len(state.password.Bytes()) == 0 {
		t.Fatalf("expected the state to retain the password before destruction")
	}

	state.Destroy()

	if state.password != nil {
		t.Fatalf("expected Destroy to release the password buffer")
	}

	if state.blind != ([32]byte{}) {
		t.Fatalf("expected Destroy to zero the blind scalar")
	}

	if state.lifecycle != clientFailed {
		t.Fatalf("expected Destroy to leave the state terminated")
	}
}
