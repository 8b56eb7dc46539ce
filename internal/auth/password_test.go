package auth

import (
	"strings"
	"testing"
)

// cheap parameters keep the tests fast.
var testParams = ArgonParams{Memory: 1024, Time: 1, Threads: 1, SaltLen: 8, KeyLen: 16}

func TestHashAndVerify(t *testing.T) {
	phc, err := HashPassword("correct horse", testParams)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Errorf("unexpected PHC prefix: %s", phc)
	}
	if !VerifyPassword("correct horse", phc) {
		t.Error("correct password rejected")
	}
	if VerifyPassword("wrong horse", phc) {
		t.Error("wrong password accepted")
	}
}

func TestHashIsSalted(t *testing.T) {
	a, _ := HashPassword("same", testParams)
	b, _ := HashPassword("same", testParams)
	if a == b {
		t.Error("two hashes of the same password are identical")
	}
}

func TestHashRejectsBlank(t *testing.T) {
	if _, err := HashPassword("   ", testParams); err == nil {
		t.Error("blank password hashed")
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	for _, phc := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	} {
		if VerifyPassword("pw", phc) {
			t.Errorf("VerifyPassword accepted %q", phc)
		}
	}
}
