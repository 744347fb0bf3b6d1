// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package secure

import "testing"

func TestNewCopiesInput(t *testing.T) {
	original := []byte("secret material")

	b := New(original)
	defer b.Destroy()

	original[0] = 'X'

	if b.Bytes()[0] == 'X' {
		t.Fatalf("expected New to copy its input, not alias it")
	}
}

func TestZeroAllocatesZeroed(t *testing.T) {
	b := Zero(16)
	defer b.Destroy()

	for i, v := range b.Bytes() {
		if v != 0 {
			t.Fatalf("byte %d not zero: %d", i, v)
		}
	}
}

func TestDestroyZeroizes(t *testing.T) {
	b := New([]byte("top secret"))
	backing := b.Bytes()

	b.Destroy()

	for i, v := range backing {
		if v != 0 {
			t.Fatalf("byte %d not zeroized after Destroy: %d", i, v)
		}
	}

	if b.Bytes() != nil {
		t.Fatalf("expected Bytes to return nil after Destroy")
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	b := New([]byte("top secret"))

	b.Destroy()
	b.Destroy()

	if b.Bytes() != nil {
		t.Fatalf("expected Bytes to remain nil after a second Destroy")
	}
}

func TestLockUnlockThenDestroy(t *testing.T) {
	b := New([]byte("locked secret"))

	b.Lock()
	b.Lock() // second call must be a no-op, not a double mlock.

	if string(b.Bytes()) != "locked secret" {
		t.Fatalf("expected Lock to preserve the buffer's contents")
	}

	b.Unlock()
	b.Destroy()

	if b.Bytes() != nil {
		t.Fatalf("expected Bytes to return nil after Destroy")
	}
}

func TestLockAfterDestroyIsNoop(t *testing.T) {
	b := New([]byte("secret"))
	b.Destroy()

	// Must not panic or attempt to lock freed storage.
	b.Lock()
}
