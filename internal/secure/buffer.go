// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package secure provides a scoped acquisition type for secret-bearing byte buffers: guaranteed
// zeroization on every exit path, plus best-effort, non-fatal page locking (mlock) where the host
// OS supports it. Page-protection changes (mprotect to read-only or no-access) are not made.
package secure

import "sync"

// Bytes is a secret-bearing buffer that zeroizes its contents exactly once, on Destroy. A Bytes
// must not be copied after New; copy the result of Bytes instead.
type Bytes struct {
	mu        sync.Mutex
	data      []byte
	destroyed bool
	locked    bool
}

// New allocates a Bytes wrapping a copy of data. The caller retains ownership of the input slice.
func New(data []byte) *Bytes {
	b := &Bytes{data: make([]byte, len(data))}
	copy(b.data, data)

	return b
}

// Zero allocates a zeroed Bytes of length n.
func Zero(n int) *Bytes {
	return &Bytes{data: make([]byte, n)}
}

// Bytes returns the buffer's contents. The returned slice aliases internal storage and must not
// be retained past the next call to Destroy.
func (b *Bytes) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		return nil
	}

	return b.data
}

// Lock attempts to lock the buffer's backing pages from swap. The pages stay readable and
// writable. Failure is non-fatal: platforms without mlock support silently skip it.
func (b *Bytes) Lock() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed || b.locked {
		return
	}

	lockPages(b.data)
	b.locked = true
}

// Unlock reverses Lock, unlocking the pages from the OS lock, if they were ever locked.
func (b *Bytes) Unlock() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.locked {
		return
	}

	unlockPages(b.data)
	b.locked = false
}

// Destroy zeroizes the buffer's backing storage and releases any OS-level page lock. It is safe
// to call Destroy more than once; only the first call has an effect.
func (b *Bytes) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		return
	}

	if b.locked {
		unlockPages(b.data)
		b.locked = false
	}

	for i := range b.data {
		b.data[i] = 0
	}

	b.data = nil
	b.destroyed = true
}
