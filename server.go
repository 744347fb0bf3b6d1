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
	"github.com/nyxauth/opaque/internal/group"
	"github.com/nyxauth/opaque/internal/mac"
	"github.com/nyxauth/opaque/internal/oprf"
	irand "github.com/nyxauth/opaque/internal/rand"
	"github.com/nyxauth/opaque/internal/wire"
)

// serverLifecycle enforces invariant 1 on the responder side.
type serverLifecycle int

const (
	serverFresh serverLifecycle = iota
	serverAwaitFinish
	serverDone
	serverFailed
)

// Server is the responder role: it holds a long-term key pair and an OPRF seed, both logically
// immutable after construction and safe for concurrent use across sessions.
type Server struct {
	sk       [32]byte
	pk       [32]byte
	oprfSeed [32]byte
	opts     *roleOptions
}

// NewServer constructs a Server from an existing long-term secret key and OPRF seed.
func NewServer(sk, oprfSeed [32]byte, opts ...Option) (*Server, error) {
	pk, err := group.BasePointMult(sk)
	if err != nil {
		return nil, wrap(err)
	}

	o := defaultRoleOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Server{sk: sk, pk: pk, oprfSeed: oprfSeed, opts: o}, nil
}

// GenerateServerKeyMaterial produces a fresh long-term secret key and OPRF seed read from src (or
// crypto/rand.Reader if src is nil), for provisioning a new responder.
func GenerateServerKeyMaterial(src io.Reader) (sk, oprfSeed [32]byte, err error) {
	seed, err := irand.Bytes(src, internal.SeedLength)
	if err != nil {
		return sk, oprfSeed, wrap(err)
	}

	sk, _, err = group.DeriveKeyPair(seed)
	if err != nil {
		return sk, oprfSeed, wrap(err)
	}

	seedBytes, err := irand.Bytes(src, internal.SeedLength)
	if err != nil {
		return sk, oprfSeed, wrap(err)
	}

	copy(oprfSeed[:], seedBytes)

	return sk, oprfSeed, nil
}

// PublicKey returns the responder's long-term public key.
func (s *Server) PublicKey() [32]byte { return s.pk }

func (s *Server) randSrc() io.Reader { return s.opts.rand }
func (s *Server) log() *slog.Logger  { return s.opts.log() }

// ServerState carries a responder session across the calls of one authentication attempt.
type ServerState struct {
	mu sync.Mutex

	lifecycle serverLifecycle

	sessionKey           [64]byte
	expectedInitiatorMAC []byte
}

// NewServerState allocates a fresh ServerState, ready for GenerateKE2.
func NewServerState() *ServerState {
	return &ServerState{lifecycle: serverFresh}
}

func (s *ServerState) zero() {
	s.sessionKey = [64]byte{}

	for i := range s.expectedInitiatorMAC {
		s.expectedInitiatorMAC[i] = 0
	}

	s.expectedInitiatorMAC = nil
}

// Destroy zeroizes and terminates the state.
func (s *ServerState) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.zero()
	s.lifecycle = serverFailed
}

func (s *ServerState) fail() {
	s.zero()
	s.lifecycle = serverFailed
}

// CreateRegistrationResponse derives this credential's OPRF key from the responder's seed and the
// request itself, evaluates the OPRF, and returns the 96-byte response along with the partial
// CredentialFile the caller must persist (Record and InitiatorPK are filled in once the initiator
// uploads its finalized registration).
func (s *Server) CreateRegistrationResponse(request *wire.RegistrationRequest) (*wire.RegistrationResponse, *CredentialFile, error) {
	reqBytes := request.Serialize()

	oprfKey, err := oprf.DeriveKey(s.oprfSeed[:], reqBytes)
	if err != nil {
		return nil, nil, wrap(err)
	}

	evaluated, err := oprf.Evaluate(request.BlindedElement, oprfKey)
	if err != nil {
		return nil, nil, wrap(err)
	}

	maskingKeyBytes, err := irand.Bytes(s.randSrc(), internal.SeedLength)
	if err != nil {
		return nil, nil, wrap(err)
	}

	var maskingKey [32]byte
	copy(maskingKey[:], maskingKeyBytes)

	response := &wire.RegistrationResponse{Evaluated: evaluated, ResponderPK: s.pk, MaskingKey: maskingKey}
	cred := &CredentialFile{OPRFKey: oprfKey, MaskingKey: maskingKey}

	s.log().Debug("registration response created")

	return response, cred, nil
}

// GenerateKE2 re-evaluates the OPRF over the fresh blinded element carried in ke1, builds the
// credential response around the persisted registration record's envelope, derives the key
// schedule, and emits the 336-byte second handshake message. cred must have a non-nil Record (the
// initiator must have completed and uploaded FinalizeRegistration for this credential).
//
// The emitted credential_response's ResponderPK field carries the freshly evaluated OPRF element,
// not the responder's identity key: the initiator recovers and checks the responder identity from
// the envelope's authenticated plaintext.
func (s *Server) GenerateKE2(state *ServerState, ke1 *wire.KE1, cred *CredentialFile) (*wire.KE2, error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.lifecycle != serverFresh {
		return nil, ErrInvalidInput
	}

	if cred == nil || cred.Record == nil {
		state.fail()
		return nil, ErrInvalidInput
	}

	evaluated, err := oprf.Evaluate(ke1.CredentialRequest, cred.OPRFKey)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	credResp := &wire.CredentialResponse{ResponderPK: evaluated, Envelope: cred.Record.Envelope}

	ephSeed, err := irand.Bytes(s.randSrc(), internal.SeedLength)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	respSK, respPK, err := group.DeriveKeyPair(ephSeed)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	nonceBytes, err := irand.Bytes(s.randSrc(), internal.NonceLength)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	var nonce [32]byte
	copy(nonce[:], nonceBytes)

	ke1Bytes := ke1.Serialize()
	credRespBytes := credResp.Serialize()
	transcript := ake.Transcript(ke1Bytes, credRespBytes, nonce[:], respPK[:])

	dh1, err := group.ScalarMult(respSK, ke1.InitiatorEphemeralPK)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	dh2, err := group.ScalarMult(s.sk, ke1.InitiatorEphemeralPK)
	if err != nil {
		state.fail()
		return nil, wrap(err)
	}

	dh3, err := group.ScalarMult(respSK, cred.InitiatorPK)
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

	responderMAC := ake.ServerMAC(keys, transcript)
	expectedInitiatorMAC := ake.ClientMAC(keys, transcript, responderMAC)

	var respMAC [64]byte
	copy(respMAC[:], responderMAC)

	copy(state.sessionKey[:], keys.SessionKey)
	state.expectedInitiatorMAC = expectedInitiatorMAC
	state.lifecycle = serverAwaitFinish

	s.log().Debug("ke2 generated")

	return &wire.KE2{
		ResponderNonce:       nonce,
		ResponderEphemeralPK: respPK,
		CredentialResponse:   credResp,
		ResponderMAC:         respMAC,
	}, nil
}

// Finish verifies ke3's MAC in constant time against the value computed by GenerateKE2 and, on
// success, returns the session key and zeroizes state.
func (s *Server) Finish(state *ServerState, ke3 *wire.KE3) (sessionKey [64]byte, err error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.lifecycle != serverAwaitFinish {
		return sessionKey, ErrInvalidInput
	}

	if !mac.Equal(ke3.InitiatorMAC[:], state.expectedInitiatorMAC) {
		state.fail()
		return sessionKey, ErrAuthentication
	}

	sessionKey = state.sessionKey

	state.zero()
	state.lifecycle = serverDone

	s.log().Debug("server finished")

	return sessionKey, nil
}
