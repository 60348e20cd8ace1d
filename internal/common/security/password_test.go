package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "secret1" {
		t.Fatalf("hash equals plaintext")
	}

	if !CheckPasswordHash("secret1", hash) {
		t.Fatalf("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Fatalf("wrong password accepted")
	}
}

func TestCheckPasswordHash_InvalidHash(t *testing.T) {
	t.Parallel()

	if CheckPasswordHash("secret1", "not-a-bcrypt-hash") {
		t.Fatalf("invalid hash accepted")
	}
}
