// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package handle implements the fixed operation set an FFI shim would bind to: opaque integer
// handles over Client/Server/ClientState/ServerState, every operation returning a wire-stable
// integer status instead of a Go error. This package is the dispatch surface only — the actual
// cgo/C-ABI export boundary, transport, and record persistence remain the caller's concern.
//
// Grounded on original_source's opaque_client_c.h for the initiator-facing operation set, and
// supplemented with a symmetric responder-facing operation set recovered from responder.h, which
// spec.md's distillation of the initiator API did not carry over.
package handle

import (
	"errors"
	"sync"

	"github.com/nyxauth/opaque"
	"github.com/nyxauth/opaque/internal/group"
	"github.com/nyxauth/opaque/internal/wire"
)

// Handle identifies a live Client or Server. StateHandle identifies a live ClientState or
// ServerState. CredentialHandle identifies a responder's persisted CredentialFile. All three are
// opaque to callers.
type Handle uint64

// StateHandle identifies a live ClientState or ServerState.
type StateHandle uint64

// CredentialHandle identifies a responder's persisted CredentialFile.
type CredentialHandle uint64

type registry struct {
	mu    sync.Mutex
	next  uint64
	items map[uint64]any
}

func newRegistry() *registry { return &registry{items: make(map[uint64]any)} }

func (r *registry) put(v any) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	r.items[r.next] = v

	return r.next
}

func (r *registry) get(h uint64) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.items[h]

	return v, ok
}

func (r *registry) delete(h uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, h)
}

var (
	clients         = newRegistry()
	clientStates    = newRegistry()
	servers         = newRegistry()
	serverStates    = newRegistry()
	credentialFiles = newRegistry()
)

// defaultSeed derives CreateDefault's compiled-in responder public key. CreateDefault is
// documented as testing-only; nothing about defaultSeed is secret.
var defaultSeed = [32]byte{
	0x64, 0x65, 0x66, 0x61, 0x75, 0x6c, 0x74, 0x2d,
	0x72, 0x65, 0x73, 0x70, 0x6f, 0x6e, 0x64, 0x65,
	0x72, 0x2d, 0x73, 0x65, 0x65, 0x64, 0x2d, 0x66,
	0x6f, 0x72, 0x2d, 0x74, 0x65, 0x73, 0x74, 0x73,
}

var (
	defaultResponderPKOnce sync.Once
	defaultResponderPK     [32]byte
)

func getDefaultResponderPK() [32]byte {
	defaultResponderPKOnce.Do(func() {
		_, pk, err := group.DeriveKeyPair(defaultSeed[:])
		if err != nil {
			panic("handle: default responder key derivation failed: " + err.Error())
		}

		defaultResponderPK = pk
	})

	return defaultResponderPK
}

func statusOf(err error) int {
	if err == nil {
		return 0
	}

	var oe *opaque.Error
	if errors.As(err, &oe) {
		return oe.Status()
	}

	return opaque.ErrCodeCrypto.Status()
}

func invalidInput() int { return opaque.ErrCodeInvalidInput.Status() }

// writeOut copies src into dst, matching the C-ABI contract that output buffers may be oversized
// but the function writes exactly len(src) bytes; dst shorter than src is InvalidInput.
func writeOut(dst, src []byte) int {
	if len(dst) < len(src) {
		return invalidInput()
	}

	copy(dst, src)

	return 0
}

// Create constructs a new initiator handle configured against responderPK.
func Create(responderPK [32]byte) (Handle, int) {
	c, err := opaque.NewClient(responderPK)
	if err != nil {
		return 0, statusOf(err)
	}

	return Handle(clients.put(c)), 0
}

// CreateDefault constructs a new initiator handle against a compiled-in responder public key.
// For testing only: never use CreateDefault against a production responder.
func CreateDefault() (Handle, int) {
	return Create(getDefaultResponderPK())
}

// Destroy releases an initiator handle. Destroying an unknown handle is a no-op.
func Destroy(h Handle) {
	clients.delete(uint64(h))
}

// StateCreate allocates a fresh initiator session state.
func StateCreate() StateHandle {
	return StateHandle(clientStates.put(opaque.NewClientState()))
}

// StateDestroy zeroizes and releases an initiator session state. Destroying an unknown handle is
// a no-op.
func StateDestroy(st StateHandle) {
	if v, ok := clientStates.get(uint64(st)); ok {
		v.(*opaque.ClientState).Destroy()
	}

	clientStates.delete(uint64(st))
}

// CreateRegistrationRequest writes the 32-byte registration request for password into out.
func CreateRegistrationRequest(h Handle, password []byte, st StateHandle, out []byte) int {
	cv, ok := clients.get(uint64(h))
	if !ok {
		return invalidInput()
	}

	sv, ok := clientStates.get(uint64(st))
	if !ok {
		return invalidInput()
	}

	req, err := cv.(*opaque.Client).CreateRegistrationRequest(sv.(*opaque.ClientState), password)
	if err != nil {
		return statusOf(err)
	}

	return writeOut(out, req.Serialize())
}

// FinalizeRegistration parses response, seals masterKey into a fresh long-term key pair, and
// writes the 208-byte registration record into out. If initiatorPKOut is non-nil, the freshly
// generated long-term public key is written there too: it is not part of the wire record (the record's
// first field is the responder's public key, per the fixed wire layout), and a caller assembling
// a responder's persisted CredentialFile needs it out of band, exactly as a real enrollment upload
// carries the client's public key alongside its sealed envelope.
func FinalizeRegistration(
	h Handle,
	response []byte,
	masterKey [32]byte,
	st StateHandle,
	out []byte,
	initiatorPKOut *[32]byte,
) int {
	cv, ok := clients.get(uint64(h))
	if !ok {
		return invalidInput()
	}

	sv, ok := clientStates.get(uint64(st))
	if !ok {
		return invalidInput()
	}

	resp, err := wire.DeserializeRegistrationResponse(response)
	if err != nil {
		return invalidInput()
	}

	record, initiatorPK, err := cv.(*opaque.Client).FinalizeRegistration(sv.(*opaque.ClientState), resp, masterKey)
	if err != nil {
		return statusOf(err)
	}

	if status := writeOut(out, record.Serialize()); status != 0 {
		return status
	}

	if initiatorPKOut != nil {
		*initiatorPKOut = initiatorPK
	}

	return 0
}

// GenerateKE1 writes the 96-byte first handshake message into out.
func GenerateKE1(h Handle, password []byte, st StateHandle, out []byte) int {
	cv, ok := clients.get(uint64(h))
	if !ok {
		return invalidInput()
	}

	sv, ok := clientStates.get(uint64(st))
	if !ok {
		return invalidInput()
	}

	ke1, err := cv.(*opaque.Client).GenerateKE1(sv.(*opaque.ClientState), password)
	if err != nil {
		return statusOf(err)
	}

	return writeOut(out, ke1.Serialize())
}

// GenerateKE3 parses ke2, verifies the responder's MAC, and writes the 64-byte third handshake
// message into out.
func GenerateKE3(h Handle, ke2 []byte, st StateHandle, out []byte) int {
	cv, ok := clients.get(uint64(h))
	if !ok {
		return invalidInput()
	}

	sv, ok := clientStates.get(uint64(st))
	if !ok {
		return invalidInput()
	}

	ke2Msg, err := wire.DeserializeKE2(ke2)
	if err != nil {
		return invalidInput()
	}

	ke3, err := cv.(*opaque.Client).GenerateKE3(sv.(*opaque.ClientState), ke2Msg)
	if err != nil {
		return statusOf(err)
	}

	return writeOut(out, ke3.Serialize())
}

// Finish writes the 64-byte session key and 32-byte master key recovered by GenerateKE3 into
// sessionKeyOut and masterKeyOut.
func Finish(h Handle, st StateHandle, sessionKeyOut, masterKeyOut []byte) int {
	cv, ok := clients.get(uint64(h))
	if !ok {
		return invalidInput()
	}

	sv, ok := clientStates.get(uint64(st))
	if !ok {
		return invalidInput()
	}

	sessionKey, masterKey, err := cv.(*opaque.Client).Finish(sv.(*opaque.ClientState))
	if err != nil {
		return statusOf(err)
	}

	if status := writeOut(sessionKeyOut, sessionKey[:]); status != 0 {
		return status
	}

	return writeOut(masterKeyOut, masterKey[:])
}

// GetVersion returns the library version string. Idempotent and side-effect free.
func GetVersion() string {
	return opaque.GetVersion()
}

// CreateResponder constructs a new responder handle from an existing long-term secret key and
// OPRF seed.
func CreateResponder(sk, oprfSeed [32]byte) (Handle, int) {
	s, err := opaque.NewServer(sk, oprfSeed)
	if err != nil {
		return 0, statusOf(err)
	}

	return Handle(servers.put(s)), 0
}

// DestroyResponder releases a responder handle. Destroying an unknown handle is a no-op.
func DestroyResponder(h Handle) {
	servers.delete(uint64(h))
}

// ResponderStateCreate allocates a fresh responder session state.
func ResponderStateCreate() StateHandle {
	return StateHandle(serverStates.put(opaque.NewServerState()))
}

// ResponderStateDestroy zeroizes and releases a responder session state.
func ResponderStateDestroy(st StateHandle) {
	if v, ok := serverStates.get(uint64(st)); ok {
		v.(*opaque.ServerState).Destroy()
	}

	serverStates.delete(uint64(st))
}

// ResponderCreateRegistrationResponse parses request, writes the 96-byte registration response
// into out, and returns a handle to the CredentialFile the responder must complete with
// ResponderIngestRecord once the initiator uploads its finalized registration.
func ResponderCreateRegistrationResponse(h Handle, request []byte, out []byte) (CredentialHandle, int) {
	sv, ok := servers.get(uint64(h))
	if !ok {
		return 0, invalidInput()
	}

	req, err := wire.DeserializeRegistrationRequest(request)
	if err != nil {
		return 0, invalidInput()
	}

	resp, cred, err := sv.(*opaque.Server).CreateRegistrationResponse(req)
	if err != nil {
		return 0, statusOf(err)
	}

	if status := writeOut(out, resp.Serialize()); status != 0 {
		return 0, status
	}

	return CredentialHandle(credentialFiles.put(cred)), 0
}

// ResponderIngestRecord attaches the initiator's uploaded record and long-term public key to a
// CredentialFile previously created by ResponderCreateRegistrationResponse, completing the
// responder-side state needed to answer a future authentication attempt.
func ResponderIngestRecord(ch CredentialHandle, record []byte, initiatorPK [32]byte) int {
	cv, ok := credentialFiles.get(uint64(ch))
	if !ok {
		return invalidInput()
	}

	rec, err := wire.DeserializeCredentialResponse(record)
	if err != nil {
		return invalidInput()
	}

	cf := cv.(*opaque.CredentialFile)
	cf.Record = rec
	cf.InitiatorPK = initiatorPK

	return 0
}

// ResponderGenerateKE2 parses ke1, evaluates the OPRF, and writes the 336-byte second handshake
// message into out.
func ResponderGenerateKE2(h Handle, ke1 []byte, ch CredentialHandle, st StateHandle, out []byte) int {
	sv, ok := servers.get(uint64(h))
	if !ok {
		return invalidInput()
	}

	cv, ok := credentialFiles.get(uint64(ch))
	if !ok {
		return invalidInput()
	}

	stv, ok := serverStates.get(uint64(st))
	if !ok {
		return invalidInput()
	}

	ke1Msg, err := wire.DeserializeKE1(ke1)
	if err != nil {
		return invalidInput()
	}

	ke2, err := sv.(*opaque.Server).GenerateKE2(stv.(*opaque.ServerState), ke1Msg, cv.(*opaque.CredentialFile))
	if err != nil {
		return statusOf(err)
	}

	return writeOut(out, ke2.Serialize())
}

// ResponderFinish verifies ke3 and writes the 64-byte session key into sessionKeyOut.
func ResponderFinish(h Handle, st StateHandle, ke3 []byte, sessionKeyOut []byte) int {
	sv, ok := servers.get(uint64(h))
	if !ok {
		return invalidInput()
	}

	stv, ok := serverStates.get(uint64(st))
	if !ok {
		return invalidInput()
	}

	ke3Msg, err := wire.DeserializeKE3(ke3)
	if err != nil {
		return invalidInput()
	}

	sessionKey, err := sv.(*opaque.Server).Finish(stv.(*opaque.ServerState), ke3Msg)
	if err != nil {
		return statusOf(err)
	}

	return writeOut(sessionKeyOut, sessionKey[:])
}
