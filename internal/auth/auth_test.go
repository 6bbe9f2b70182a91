package auth_test

import (
	"context"
	"errors"
	"testing"

	"quiz-session-service/internal/auth"
	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/infra/memory"
)

func testSource() auth.CredentialSource {
	return memory.NewStaticCredentialSource(map[string]string{
		"JCV001": auth.HashPassword("Pass@01"),
		"JCV002": auth.HashPassword("Abc@12"),
	})
}

func TestAuthenticateSuccess(t *testing.T) {
	user, err := auth.Authenticate(context.Background(), testSource(), "JCV001", "Pass@01")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user != "JCV001" {
		t.Fatalf("expected JCV001, got %q", user)
	}
}

func TestAuthenticateTrimsUsername(t *testing.T) {
	user, err := auth.Authenticate(context.Background(), testSource(), "  JCV002  ", "Abc@12")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user != "JCV002" {
		t.Fatalf("expected trimmed username, got %q", user)
	}
}

func TestAuthenticateEmptyInput(t *testing.T) {
	cases := []struct{ username, password string }{
		{"", "Pass@01"},
		{"   ", "Pass@01"},
		{"JCV001", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if _, err := auth.Authenticate(context.Background(), testSource(), tc.username, tc.password); !errors.Is(err, domain.ErrEmptyInput) {
			t.Fatalf("username=%q password=%q: expected ErrEmptyInput, got %v", tc.username, tc.password, err)
		}
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	if _, err := auth.Authenticate(context.Background(), testSource(), "nobody", "Pass@01"); !errors.Is(err, domain.ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestAuthenticateRejectsMutatedPasswords(t *testing.T) {
	// Flip each character of the correct password in turn; every variant must fail.
	correct := "Pass@01"
	for i := range correct {
		mutated := []byte(correct)
		mutated[i]++
		if _, err := auth.Authenticate(context.Background(), testSource(), "JCV001", string(mutated)); !errors.Is(err, domain.ErrBadPassword) {
			t.Fatalf("mutation at %d: expected ErrBadPassword, got %v", i, err)
		}
	}
}

func TestHashPasswordIsStableHex(t *testing.T) {
	h := auth.HashPassword("Pass@01")
	if len(h) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h))
	}
	if h != auth.HashPassword("Pass@01") {
		t.Fatalf("digest not deterministic")
	}
}
