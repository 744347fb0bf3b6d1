// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import "github.com/nyxauth/opaque/internal/wire"

// CredentialFile is the per-credential state a responder persists after registration completes.
// Its layout is not part of the wire protocol: only Record travels over the wire, unchanged, as
// the 208-byte registration record. OPRFKey and InitiatorPK are storage the responder needs to
// answer future authentication attempts; MaskingKey is generated and stored per credential, but
// GenerateKE2 does not read it and the credential response is sent unmasked. None of the three is
// serialized onto any message.
//
// InitiatorPK is carried out of band from FinalizeRegistration: the envelope's ciphertext seals
// the initiator's long-term key pair under a password-derived key the responder does not have, so
// the responder cannot recover the initiator's public key from Record alone. A real deployment
// ships it alongside the registration upload the same way it ships the record itself.
type CredentialFile struct {
	OPRFKey     [32]byte
	MaskingKey  [32]byte
	InitiatorPK [32]byte
	Record      *wire.RegistrationRecord
}
