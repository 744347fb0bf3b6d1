// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package ake implements the shared transcript hashing and key-schedule steps of the 3DH
// key-exchange both the initiator and responder roles run, so the two sides can never drift
// apart in how they derive the handshake secret, session key, and MACs.
package ake

import (
	"crypto/sha512"

	"github.com/nyxauth/opaque/internal/kdf"
	"github.com/nyxauth/opaque/internal/mac"
	"github.com/nyxauth/opaque/internal/tag"
)

// Transcript computes T = SHA-512(ke1 ‖ credentialResponse ‖ peerNonce ‖ peerEphemeralPK), the
// value both parties commit to before deriving any keys.
func Transcript(ke1, credentialResponse, peerNonce, peerEphemeralPK []byte) []byte {
	h := sha512.New()
	h.Write(ke1)
	h.Write(credentialResponse)
	h.Write(peerNonce)
	h.Write(peerEphemeralPK)

	return h.Sum(nil)
}

// Keys holds the outputs of the key schedule.
type Keys struct {
	ServerMACKey    []byte
	ClientMACKey    []byte
	HandshakeSecret []byte
	SessionKey      []byte
}

// DeriveKeys runs the HKDF schedule over the three concatenated Diffie-Hellman shares (ikm),
// bound to the transcript T via HKDF-Extract's salt argument.
func DeriveKeys(transcript, ikm []byte) (*Keys, error) {
	prk := kdf.Extract(transcript, ikm)

	handshakeSecret, err := kdf.Expand(prk, []byte(tag.Handshake), 64)
	if err != nil {
		return nil, err
	}

	sessionKey, err := kdf.Expand(prk, []byte(tag.SessionKey), 64)
	if err != nil {
		return nil, err
	}

	return &Keys{
		ServerMACKey:    handshakeSecret[:32],
		ClientMACKey:    handshakeSecret[32:],
		HandshakeSecret: handshakeSecret,
		SessionKey:      sessionKey,
	}, nil
}

// ServerMAC computes the responder's MAC over the transcript.
func ServerMAC(keys *Keys, transcript []byte) []byte {
	return mac.Sum(keys.ServerMACKey, []byte(tag.MacServer), transcript)
}

// ClientMAC computes the initiator's MAC over the transcript and the responder's MAC.
func ClientMAC(keys *Keys, transcript, serverMAC []byte) []byte {
	return mac.Sum(keys.ClientMACKey, []byte(tag.MacClient), transcript, serverMAC)
}
