package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"quiz-session-service/internal/domain"
)

func TestFileCatalogLoaderReadsAndValidates(t *testing.T) {
	path := writeTemp(t, "quiz.json", `{
		"title": "Sample Quiz",
		"sections": [
			{"title": "Arithmetic", "questions": [
				{"id": "q1", "text": "What is 2 + 2?", "options": ["3", "4"], "answer": 1}
			]}
		]
	}`)

	catalog, err := NewFileCatalogLoader(path).LoadCatalog(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if catalog.ID != "quiz-1" || catalog.Title != "Sample Quiz" {
		t.Fatalf("unexpected catalog header: %+v", catalog)
	}
	if catalog.TotalQuestions() != 1 {
		t.Fatalf("expected 1 question, got %d", catalog.TotalQuestions())
	}
}

func TestFileCatalogLoaderRejectsMalformedContent(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"broken json", `{"title": `},
		{"answer out of range", `{"sections": [{"questions": [{"id": "q1", "options": ["a"], "answer": 5}]}]}`},
		{"duplicate ids", `{"sections": [{"questions": [
			{"id": "q1", "options": ["a", "b"], "answer": 0},
			{"id": "q1", "options": ["a", "b"], "answer": 1}
		]}]}`},
	}
	for _, tc := range cases {
		path := writeTemp(t, tc.name+".json", tc.body)
		if _, err := NewFileCatalogLoader(path).LoadCatalog(context.Background(), "quiz-1"); !errors.Is(err, domain.ErrInvalidCatalog) {
			t.Fatalf("%s: expected ErrInvalidCatalog, got %v", tc.name, err)
		}
	}
}

func TestLoadCredentialFile(t *testing.T) {
	path := writeTemp(t, "users.json", `{"JCV001": "aaaa", "JCV002": "bbbb"}`)
	creds, err := LoadCredentialFile(path)
	if err != nil {
		t.Fatalf("load credentials: %v", err)
	}
	if len(creds) != 2 || creds["JCV001"] != "aaaa" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
