// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"testing"
)

func TestHashToken(t *testing.T) {
	hash, err := HashToken("a-long-enough-admin-token")
	if err != nil {
		t.Fatalf("HashToken error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashToken returned empty hash")
	}
}

func TestHashToken_TooShort(t *testing.T) {
	if _, err := HashToken("short"); err == nil {
		t.Fatal("expected error for token shorter than minimum")
	}
}

func TestVerifyToken_Correct(t *testing.T) {
	hash, err := HashToken("a-long-enough-admin-token")
	if err != nil {
		t.Fatalf("HashToken error: %v", err)
	}
	if !VerifyToken(hash, "a-long-enough-admin-token") {
		t.Fatal("correct token was rejected")
	}
}

func TestVerifyToken_Wrong(t *testing.T) {
	hash, err := HashToken("a-long-enough-admin-token")
	if err != nil {
		t.Fatalf("HashToken error: %v", err)
	}
	if VerifyToken(hash, "a-different-admin-token!") {
		t.Fatal("wrong token was accepted")
	}
}

func TestVerifyToken_GarbageHash(t *testing.T) {
	if VerifyToken("not-a-bcrypt-hash", "a-long-enough-admin-token") {
		t.Fatal("garbage hash was accepted")
	}
}
