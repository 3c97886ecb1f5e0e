package services

import "testing"

func TestHashIsSaltedPerCall(t *testing.T) {
	first, err := HashPassword("secret-pass")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	second, err := HashPassword("secret-pass")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same plaintext must differ")
	}
	if !CheckPassword("secret-pass", first) || !CheckPassword("secret-pass", second) {
		t.Fatal("both digests must verify the original plaintext")
	}
}

func TestCheckPasswordRejectsWrongPlaintext(t *testing.T) {
	digest, err := HashPassword("secret-pass")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if CheckPassword("other-pass", digest) {
		t.Fatal("wrong plaintext must not verify")
	}
}

func TestCheckPasswordRejectsMalformedDigest(t *testing.T) {
	for _, digest := range []string{"", "not-a-bcrypt-digest", "$2a$broken"} {
		if CheckPassword("secret-pass", digest) {
			t.Fatalf("malformed digest %q must not verify", digest)
		}
	}
}
