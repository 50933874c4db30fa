package crypto

import "testing"

func TestBcryptHasherRoundTrip(t *testing.T) {
	hasher := BcryptHasher{Cost: 4}
	hash, err := hasher.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "correct horse" {
		t.Fatalf("expected a hash, got the password back")
	}
	if err := hasher.Compare(hash, "correct horse"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := hasher.Compare(hash, "battery staple"); err == nil {
		t.Fatalf("expected mismatch")
	}
}
