// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package tag holds the domain-separation and context strings mixed into every KDF and MAC call
// in this module, so that no two distinct derivations can ever collide on the same input.
package tag

const (
	OPRFPointPrefix = "OPRFPoint"
	OPRFKeyPrefix   = "OPRF"
	OPRFFinalize    = "Finalize"

	EnvelopeKey = "EnvelopeKey"
	EnvelopeMAC = "EnvelopeMAC"

	Handshake = "Handshake"
	SessionKey = "SessionKey"

	MacServer = "ServerMAC"
	MacClient = "ClientMAC"

	DeriveDiffieHellmanKeyPair = "DeriveDiffieHellmanKeyPair"
)
