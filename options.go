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
)

// roleOptions holds the configuration shared by Client and Server construction.
type roleOptions struct {
	rand   io.Reader
	logger *slog.Logger
}

func defaultRoleOptions() *roleOptions {
	return &roleOptions{logger: slog.Default()}
}

// Option configures a Client or Server at construction time.
type Option func(*roleOptions)

// WithRandomSource overrides the source of cryptographic randomness. Passing nil is equivalent to
// not calling this option: crypto/rand.Reader is used. Intended for deterministic tests and
// conformance vectors, never for production use.
func WithRandomSource(src io.Reader) Option {
	return func(o *roleOptions) { o.rand = src }
}

// WithLogger overrides the structured logger used for non-secret diagnostic events. Passing nil
// disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *roleOptions) { o.logger = logger }
}

func (o *roleOptions) log() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return o.logger
}
