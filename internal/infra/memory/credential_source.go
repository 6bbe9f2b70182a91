package memory

import (
	"context"

	"quiz-session-service/internal/domain"
)

// StaticCredentialSource serves username -> password-hash lookups from an
// in-memory map. The map is read-only after construction.
type StaticCredentialSource struct {
	creds map[string]string
}

func NewStaticCredentialSource(creds map[string]string) *StaticCredentialSource {
	return &StaticCredentialSource{creds: creds}
}

func (s *StaticCredentialSource) Lookup(_ context.Context, username string) (string, error) {
	hash, ok := s.creds[username]
	if !ok {
		return "", domain.ErrUnknownUser
	}
	return hash, nil
}
