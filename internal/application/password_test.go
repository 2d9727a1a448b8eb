package application

import (
	"errors"
	"strings"
	"testing"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := CreatePasswordHash("s3cret-phrase", DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("CreatePasswordHash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Fatalf("hash = %q, want $argon2id$v= prefix", hash)
	}

	if err := VerifyPassword(hash, "s3cret-phrase"); err != nil {
		t.Errorf("VerifyPassword() error = %v, want match", err)
	}
	if err := VerifyPassword(hash, "wrong-phrase"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("VerifyPassword() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestPasswordHashUniqueSalts(t *testing.T) {
	t.Parallel()

	first, err := CreatePasswordHash("same-password", DefaultArgon2idParams)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CreatePasswordHash("same-password", DefaultArgon2idParams)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("two hashes of the same password must not share a salt")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash string
		want error
	}{
		{"empty", "", ErrInvalidPasswordHash},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA", ErrInvalidPasswordHash},
		{"missing segments", "$argon2id$v=19$m=65536,t=3,p=2", ErrInvalidPasswordHash},
		{"future version", "$argon2id$v=99$m=65536,t=3,p=2$c2FsdA$aGFzaA", ErrIncompatiblePasswordVersion},
		{"bad salt encoding", "$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA", ErrInvalidPasswordHash},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := VerifyPassword(tc.hash, "anything"); !errors.Is(err, tc.want) {
				t.Errorf("VerifyPassword() error = %v, want %v", err, tc.want)
			}
		})
	}
}
