// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] encapsulates the timeout safety valve pattern
// (select with time.After fallback) so individual tests do not need
// direct time.After calls. [WriteFile] shortens the create-a-fixture
// dance that attachment and archive tests repeat constantly.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// RequireReceive reads one value from channel within timeout, or fails
// the test.
//
//	message := testutil.RequireReceive(t, messages, 5*time.Second, "worker result")
func RequireReceive[T any](t *testing.T, channel <-chan T, timeout time.Duration, description string) T {
	t.Helper()
	select {
	case value, ok := <-channel:
		if !ok {
			t.Fatalf("channel closed without sending a value: %s", description)
		}
		return value
	case <-time.After(timeout):
		t.Fatalf("timed out after %v: %s", timeout, description)
	}
	panic("unreachable")
}

// WriteFile creates a file named name under directory with the given
// contents and returns its path.
func WriteFile(t *testing.T, directory, name string, contents []byte) string {
	t.Helper()
	path := filepath.Join(directory, name)
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
	return path
}
