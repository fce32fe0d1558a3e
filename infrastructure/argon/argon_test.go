package argon

import (
	"errors"
	"strings"
	"testing"
)

func TestCreateAndCompare(t *testing.T) {
	hash, err := CreateHash("Almox2024", FastParams)
	if err != nil {
		t.Fatalf("create hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", hash)
	}

	ok, err := ComparePasswordAndHash("Almox2024", hash)
	if err != nil {
		t.Fatalf("compare hash: %v", err)
	}
	if !ok {
		t.Fatalf("expected password to match")
	}

	ok, err = ComparePasswordAndHash("wrong", hash)
	if err != nil {
		t.Fatalf("compare hash wrong: %v", err)
	}
	if ok {
		t.Fatalf("expected password mismatch")
	}
}

func TestCreateHashRejectsBlank(t *testing.T) {
	if _, err := CreateHash("   ", FastParams); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestCompareRejectsMalformedHash(t *testing.T) {
	for _, h := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$a$b", "$argon2id$v=18$m=1,t=1,p=1$YQ$Yg"} {
		if _, err := ComparePasswordAndHash("x", h); !errors.Is(err, ErrInvalidHash) {
			t.Fatalf("hash %q: expected ErrInvalidHash, got %v", h, err)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	weak, err := CreateHash("Almox2024", FastParams)
	if err != nil {
		t.Fatalf("create hash: %v", err)
	}
	if !NeedsRehash(weak, DefaultParams) {
		t.Fatalf("expected fast hash to need rehash under default params")
	}
	if NeedsRehash(weak, FastParams) {
		t.Fatalf("expected hash to satisfy its own params")
	}
	if !NeedsRehash("garbage", FastParams) {
		t.Fatalf("expected malformed hash to need rehash")
	}
}
