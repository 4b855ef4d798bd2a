package security

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// TestPasswordHasher_HashAndVerify はハッシュと検証の往復を検証する。
func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if digest == "secret123" {
		t.Fatal("digest must not equal plaintext")
	}
	if !strings.HasPrefix(digest, "$2") {
		t.Errorf("digest should be a bcrypt hash, got %q", digest)
	}

	if !hasher.Verify(digest, "secret123") {
		t.Error("expected digest to verify against original password")
	}
	if hasher.Verify(digest, "wrong-password") {
		t.Error("expected digest not to verify against wrong password")
	}
}

// TestPasswordHasher_SaltedDigests は同一平文でも毎回異なるダイジェストに
// なることを検証する。
func TestPasswordHasher_SaltedDigests(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := hasher.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if first == second {
		t.Error("expected different digests for same plaintext")
	}
}

// TestNewPasswordHasher_ClampsCost は範囲外のコスト指定がデフォルトに
// 丸められることを検証する。
func TestNewPasswordHasher_ClampsCost(t *testing.T) {
	hasher := NewPasswordHasher(999)
	if hasher.cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want %d", hasher.cost, bcrypt.DefaultCost)
	}

	hasher = NewPasswordHasher(-1)
	if hasher.cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want %d", hasher.cost, bcrypt.DefaultCost)
	}
}
