// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package wire defines the protocol's fixed-length, unprefixed wire messages and their
// (de)serialization. Every size is checked before any byte is touched cryptographically, per the
// module's size-exactness invariant: an input off by one byte is rejected as invalid input before
// any RNG draw or scalar operation.
package wire

import (
	"github.com/nyxauth/opaque/internal"
	"github.com/nyxauth/opaque/internal/envelope"
)

// RegistrationRequest is the initiator's blinded OPRF input (32 B).
type RegistrationRequest struct {
	BlindedElement [32]byte
}

// Serialize returns the 32-byte wire form.
func (r *RegistrationRequest) Serialize() []byte {
	return append([]byte{}, r.BlindedElement[:]...)
}

// DeserializeRegistrationRequest validates length and parses data into a RegistrationRequest.
func DeserializeRegistrationRequest(data []byte) (*RegistrationRequest, error) {
	if len(data) != internal.RegistrationRequestLength {
		return nil, internal.ErrInvalidInput
	}

	r := &RegistrationRequest{}
	copy(r.BlindedElement[:], data)

	return r, nil
}

// RegistrationResponse is the responder's answer to a registration request (96 B): the evaluated
// OPRF element, the responder's public key, and a per-credential masking key.
type RegistrationResponse struct {
	Evaluated   [32]byte
	ResponderPK [32]byte
	MaskingKey  [32]byte
}

// Serialize returns the 96-byte wire form.
func (r *RegistrationResponse) Serialize() []byte {
	out := make([]byte, 0, internal.RegistrationResponseLength)
	out = append(out, r.Evaluated[:]...)
	out = append(out, r.ResponderPK[:]...)
	out = append(out, r.MaskingKey[:]...)

	return out
}

// DeserializeRegistrationResponse validates length and parses data into a RegistrationResponse.
func DeserializeRegistrationResponse(data []byte) (*RegistrationResponse, error) {
	if len(data) != internal.RegistrationResponseLength {
		return nil, internal.ErrInvalidInput
	}

	r := &RegistrationResponse{}
	copy(r.Evaluated[:], data[0:32])
	copy(r.ResponderPK[:], data[32:64])
	copy(r.MaskingKey[:], data[64:96])

	return r, nil
}

// CredentialResponse is the responder's public key and the sealed envelope (208 B). It is also
// the wire layout of a RegistrationRecord.
type CredentialResponse struct {
	ResponderPK [32]byte
	Envelope    *envelope.Envelope
}

// Serialize returns the 208-byte wire form.
func (c *CredentialResponse) Serialize() []byte {
	out := make([]byte, 0, internal.CredentialResponseLength)
	out = append(out, c.ResponderPK[:]...)
	out = append(out, c.Envelope.Serialize()...)

	return out
}

// DeserializeCredentialResponse validates length and parses data into a CredentialResponse.
func DeserializeCredentialResponse(data []byte) (*CredentialResponse, error) {
	if len(data) != internal.CredentialResponseLength {
		return nil, internal.ErrInvalidInput
	}

	c := &CredentialResponse{}
	copy(c.ResponderPK[:], data[0:32])
	c.Envelope = envelope.Deserialize(data[32:])

	return c, nil
}

// RegistrationRecord is the initiator's upload at the end of registration; wire-identical to
// CredentialResponse.
type RegistrationRecord = CredentialResponse

// KE1 is the initiator's first handshake message (96 B).
type KE1 struct {
	InitiatorNonce       [32]byte
	InitiatorEphemeralPK [32]byte
	CredentialRequest    [32]byte
}

// Serialize returns the 96-byte wire form.
func (k *KE1) Serialize() []byte {
	out := make([]byte, 0, internal.KE1Length)
	out = append(out, k.InitiatorNonce[:]...)
	out = append(out, k.InitiatorEphemeralPK[:]...)
	out = append(out, k.CredentialRequest[:]...)

	return out
}

// DeserializeKE1 validates length and parses data into a KE1.
func DeserializeKE1(data []byte) (*KE1, error) {
	if len(data) != internal.KE1Length {
		return nil, internal.ErrInvalidInput
	}

	k := &KE1{}
	copy(k.InitiatorNonce[:], data[0:32])
	copy(k.InitiatorEphemeralPK[:], data[32:64])
	copy(k.CredentialRequest[:], data[64:96])

	return k, nil
}

// KE2 is the responder's handshake response (336 B).
type KE2 struct {
	ResponderNonce       [32]byte
	ResponderEphemeralPK [32]byte
	CredentialResponse   *CredentialResponse
	ResponderMAC         [64]byte
}

// Serialize returns the 336-byte wire form.
func (k *KE2) Serialize() []byte {
	out := make([]byte, 0, internal.KE2Length)
	out = append(out, k.ResponderNonce[:]...)
	out = append(out, k.ResponderEphemeralPK[:]...)
	out = append(out, k.CredentialResponse.Serialize()...)
	out = append(out, k.ResponderMAC[:]...)

	return out
}

// DeserializeKE2 validates length and parses data into a KE2.
func DeserializeKE2(data []byte) (*KE2, error) {
	if len(data) != internal.KE2Length {
		return nil, internal.ErrInvalidInput
	}

	k := &KE2{}
	copy(k.ResponderNonce[:], data[0:32])
	copy(k.ResponderEphemeralPK[:], data[32:64])

	credResp, err := DeserializeCredentialResponse(data[64 : 64+internal.CredentialResponseLength])
	if err != nil {
		return nil, err
	}

	k.CredentialResponse = credResp
	copy(k.ResponderMAC[:], data[64+internal.CredentialResponseLength:])

	return k, nil
}

// KE3 is the initiator's final handshake message (64 B).
type KE3 struct {
	InitiatorMAC [64]byte
}

// Serialize returns the 64-byte wire form.
func (k *KE3) Serialize() []byte {
	return append([]byte{}, k.InitiatorMAC[:]...)
}

// DeserializeKE3 validates length and parses data into a KE3.
func DeserializeKE3(data []byte) (*KE3, error) {
	if len(data) != internal.KE3Length {
		return nil, internal.ErrInvalidInput
	}

	k := &KE3{}
	copy(k.InitiatorMAC[:], data)

	return k, nil
}
