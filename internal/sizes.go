// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package internal provides structures and functions to operate OPAQUE that are not part of the
// public API.
package internal

// Fixed-length wire and primitive sizes, in bytes. Every message and secret buffer in this module
// is one of these exact lengths; nothing here is variable-length or length-prefixed.
const (
	ScalarLength  = 32
	ElementLength = 32
	NonceLength   = 32

	MasterKeyLength = 32
	SeedLength      = 32
	MACLength       = 64
	HashLength      = 64

	EnvelopeNonceLength     = 32
	EnvelopePlaintextLength = ScalarLength + ElementLength + MasterKeyLength // 96
	EnvelopeInnerTagLength  = 16
	EnvelopeOuterTagLength  = 32
	EnvelopeTagLength       = EnvelopeOuterTagLength + EnvelopeInnerTagLength // 48
	EnvelopeLength          = EnvelopeNonceLength + EnvelopePlaintextLength + EnvelopeTagLength // 176

	RegistrationRequestLength  = ElementLength                                     // 32
	RegistrationResponseLength = ElementLength + ElementLength + ElementLength     // 96
	CredentialResponseLength   = ElementLength + EnvelopeLength                    // 208
	RegistrationRecordLength   = CredentialResponseLength                         // 208

	KE1Length = NonceLength + ElementLength + ElementLength                       // 96
	KE2Length = NonceLength + ElementLength + CredentialResponseLength + MACLength // 336
	KE3Length = MACLength                                                         // 64

	SessionKeyLength      = 64
	HandshakeSecretLength = 64
)
