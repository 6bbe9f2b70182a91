package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"quiz-session-service/internal/domain"
)

// CredentialSource resolves a username to its stored password hash. It must
// return domain.ErrUnknownUser for usernames it does not know.
type CredentialSource interface {
	Lookup(ctx context.Context, username string) (string, error)
}

// HashPassword returns the lowercase hex SHA-256 digest of the password.
// Stored credentials carry this digest, never the cleartext.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Authenticate verifies a username/password pair against the credential
// source and returns the normalized username on success. Failures are one of
// domain.ErrEmptyInput, domain.ErrUnknownUser, or domain.ErrBadPassword;
// nothing beyond those three categories is revealed.
func Authenticate(ctx context.Context, source CredentialSource, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", domain.ErrEmptyInput
	}
	stored, err := source.Lookup(ctx, username)
	if err != nil {
		return "", err
	}
	if HashPassword(password) != stored {
		return "", domain.ErrBadPassword
	}
	return username, nil
}
