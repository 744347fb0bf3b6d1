// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import (
	"io"
	"log/slog"
	"sync"

	"github.com/nyxauth/opaque/internal"
	"github.com/nyxauth/opaque/internal/ake"
	"github.com/nyxauth/opaque/internal/credential"
	"github.com/nyxauth/opaque/internal/envelope"
	"github.com/nyxauth/opaque/internal/group"
	"github.com/nyxauth/opaque/internal/mac"
	"github.com/nyxauth/opaque/internal/oprf"
	irand "github.com/nyxauth/opaque/internal/rand"
	"github.com/nyxauth/opaque/internal/secure"
	"github.com/nyxauth/opaque/internal/wire"
)

// clientLifecycle enforces invariant 1: a ClientState is consumed by exactly one linear sequence
// of calls.
type clientLifecycle int

const (
	clientFresh clientLifecycle = iota
	clientAwaitRegResp
	clientAwaitKE2
	clientAwaitFinish
	clientDoneReg
	clientDoneAuth
	clientFailed
)

// Client is the initiator role: it knows the responder's long-term public key and drives
// registration and authentication against it. A Client holds no session secrets; those live in a
// ClientState.
type Client struct {
	responderPK [32]byte
	opts        *roleOptions
}

// NewClient constructs a Client configured against responderPK, which must decode to a valid,
// non-identity group element.
func NewClient(responderPK [32]byte, opts ...Option) (*Client, error) {
	if err := group.ValidatePublicKey(responderPK); err != nil {
		return nil, wrap(err)
	}

	o := defaultRoleOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Client{responderPK: responderPK, opts: o}, nil
}

func (c *Client) randSrc() io.Reader { return c.opts.rand }
func (c *Client) log() *slog.Logger  { return c.opts.log() }

// ClientState carries an initiator session across the calls of one registration or one
// authentication attempt. It must not be reused across attempts and must not be shared between
// goroutines while a call is in flight.
type ClientState struct {
	mu sync.Mutex

	lifecycle clientLifecycle

	password    *secure.Bytes
	blind       [32]byte
	ephemeralSK [32]byte
	ephemeralPK [32]byte
	nonce       [32]byte
	ke1Bytes    []byte

	sessionKey [64]byte
	masterKey  [32]byte
}

// NewClientState allocates a fresh ClientState, ready for either CreateRegistrationRequest or
// GenerateKE1.
func NewClientState() *ClientState {
	return &ClientState{lifecycle: clientFresh}
}

// zero overwrites every secret field. Called on every terminal transition: success or failure.
func (s *ClientState) zero() {
	if s.password != nil {
		s.password.Destroy()
		s.password = nil
	}

	s.blind = [32]byte{}
	s.ephemeralSK = [32]byte{}
	s.ephemeralPK = [32]byte{}
	s.nonce = [32]byte{}
	s.ke1Bytes = nil
	s.sessionKey = [64]byte{}
	s.masterKey = [32]byte{}
}

// Destroy zeroizes and terminates the state. Safe to call at any point, including after Finish
// already terminated it.
func (s *ClientState) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.zero()
	s.sessionKey = [64]byte{}
	s.masterKey = [32]byte{}
	s.lifecycle = clientFailed
}

func (s *ClientState) fail() {
	s.zero()
	s.lifecycle = clientFailed
}

// CreateRegistrationRequest blinds password and emits the 32-byte registration request. state
// must be fresh.
func (c *Client) CreateRegistrationRequest(state *ClientState, password []byte) (*wire.RegistrationRequest, error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.lifecycle != clientFresh {
		return nil, ErrInvalidInput
	}

	blinded, blind, err := oprf.Blind(c.randSrc(), password)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	state.password = secure.New(password)
	state.password.Lock()
	state.blind = blind
	state.lifecycle = clientAwaitRegResp

	c.log().Debug("registration request created")

	return &wire.RegistrationRequest{BlindedElement: blinded}, nil
}

// FinalizeRegistration processes the responder's registration response, seals masterKey into a
// fresh long-term key pair under the password, and emits the 208-byte record the responder
// persists. state must be awaiting a registration response.
func (c *Client) FinalizeRegistration(
	state *ClientState,
	response *wire.RegistrationResponse,
	masterKey [32]byte,
) (record *wire.RegistrationRecord, initiatorPK [32]byte, err error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.lifecycle != clientAwaitRegResp {
		return nil, initiatorPK, ErrInvalidInput
	}

	oprfOutput, err := oprf.Finalize(state.password.Bytes(), state.blind, response.Evaluated)
	if err != nil {
		state.fail()
		return nil, initiatorPK, wrap(err)
	}

	randomizedPwd := credential.RandomizedPassword(state.password.Bytes(), oprfOutput)

	seed, err := irand.Bytes(c.randSrc(), internal.SeedLength)
	if err != nil {
		state.fail()
		return nil, initiatorPK, wrap(err)
	}

	initiatorSK, initiatorPK, err := group.DeriveKeyPair(seed)
	if err != nil {
		state.fail()
		return nil, initiatorPK, wrap(err)
	}

	env, err := envelope.Seal(c.randSrc(), randomizedPwd, response.ResponderPK, initiatorSK, initiatorPK, masterKey)
	if err != nil {
		state.fail()
		return nil, initiatorPK, wrap(err)
	}

	record = &wire.RegistrationRecord{ResponderPK: response.ResponderPK, Envelope: env}

	state.zero()
	state.lifecycle = clientDoneReg

	c.log().Debug("registration finalized")

	return record, initiatorPK, nil
}

// GenerateKE1 blinds password afresh, generates an ephemeral key pair and nonce, and emits the
// 96-byte first handshake message. state must be fresh.
func (c *Client) GenerateKE1(state *ClientState, password []byte) (*wire.KE1, error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.lifecycle != clientFresh {
		return nil, ErrInvalidInput
	}

	blinded, blind, err := oprf.Blind(c.randSrc(), password)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	ephSeed, err := irand.Bytes(c.randSrc(), internal.SeedLength)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	ephemeralSK, ephemeralPK, err := group.DeriveKeyPair(ephSeed)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	nonceBytes, err := irand.Bytes(c.randSrc(), internal.NonceLength)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	var nonce [32]byte
	copy(nonce[:], nonceBytes)

	ke1 := &wire.KE1{InitiatorNonce: nonce, InitiatorEphemeralPK: ephemeralPK, CredentialRequest: blinded}

	state.password = secure.New(password)
	state.password.Lock()
	state.blind = blind
	state.ephemeralSK = ephemeralSK
	state.ephemeralPK = ephemeralPK
	state.nonce = nonce
	state.ke1Bytes = ke1.Serialize()
	state.lifecycle = clientAwaitKE2

	c.log().Debug("ke1 generated")

	return ke1, nil
}

// GenerateKE3 opens the envelope carried inside ke2, derives the key schedule, verifies the
// responder's MAC, and emits the initiator's MAC as KE3. On success state moves to
// clientAwaitFinish, holding the recovered session key and master key for Finish. state must be
// awaiting KE2.
//
// The responder's credential_response.ResponderPK field carries the freshly evaluated OPRF
// element in this context, not the responder's identity key: the responder identity is recovered
// from, and checked against, the envelope's authenticated plaintext by envelope.Open.
func (c *Client) GenerateKE3(state *ClientState, ke2 *wire.KE2) (*wire.KE3, error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.lifecycle != clientAwaitKE2 {
		return nil, ErrInvalidInput
	}

	credResp := ke2.CredentialResponse
	evaluated := credResp.ResponderPK

	oprfOutput, err := oprf.Finalize(state.password.Bytes(), state.blind, evaluated)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	randomizedPwd := credential.RandomizedPassword(state.password.Bytes(), oprfOutput)

	responderPK, initiatorSK, _, masterKey, err := envelope.Open(credResp.Envelope, randomizedPwd, c.responderPK)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	credRespBytes := credResp.Serialize()
	transcript := ake.Transcript(state.ke1Bytes, credRespBytes, ke2.ResponderNonce[:], ke2.ResponderEphemeralPK[:])

	dh1, err := group.ScalarMult(state.ephemeralSK, ke2.ResponderEphemeralPK)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	dh2, err := group.ScalarMult(state.ephemeralSK, responderPK)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	dh3, err := group.ScalarMult(initiatorSK, ke2.ResponderEphemeralPK)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	ikm := make([]byte, 0, 96)
	ikm = append(ikm, dh1[:]...)
	ikm = append(ikm, dh2[:]...)
	ikm = append(ikm, dh3[:]...)

	keys, err := ake.DeriveKeys(transcript, ikm)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	expectedResponderMAC := ake.ServerMAC(keys, transcript)
	if !mac.Equal(expectedResponderMAC, ke2.ResponderMAC[:]) {
		state.fail()
		return nil, ErrAuthentication
	}

	clientMAC := ake.ClientMAC(keys, transcript, ke2.ResponderMAC[:])

	var ke3MAC [64]byte
	copy(ke3MAC[:], clientMAC)

	copy(state.sessionKey[:], keys.SessionKey)
	state.masterKey = masterKey
	state.lifecycle = clientAwaitFinish

	c.log().Debug("ke3 generated")

	return &wire.KE3{InitiatorMAC: ke3MAC}, nil
}

// Finish returns the session key and recovered master key stored by GenerateKE3, then zeroizes
// and terminates state. state must be awaiting finish.
func (c *Client) Finish(state *ClientState) (sessionKey [64]byte, masterKey [32]byte, err error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.lifecycle != clientAwaitFinish {
		return sessionKey, masterKey, ErrInvalidInput
	}

	sessionKey = state.sessionKey
	masterKey = state.masterKey

	state.zero()
	state.lifecycle = clientDoneAuth

	c.log().Debug("client finished")

	return sessionKey, masterKey, nil
}
