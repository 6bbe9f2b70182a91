package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"quiz-session-service/internal/domain"
)

// FileCatalogLoader reads a catalog from a JSON file with the schema
// {title, sections: [{title, questions: [{id, text, options, answer}]}]}.
// The requested catalog ID is ignored; one file holds one catalog.
type FileCatalogLoader struct {
	path string
}

func NewFileCatalogLoader(path string) *FileCatalogLoader {
	return &FileCatalogLoader{path: path}
}

func (l *FileCatalogLoader) LoadCatalog(_ context.Context, catalogID string) (domain.Catalog, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("read catalog file: %w", err)
	}
	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return domain.Catalog{}, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	catalog.ID = catalogID
	if err := catalog.Validate(); err != nil {
		return domain.Catalog{}, err
	}
	return catalog, nil
}

// LoadCredentialFile reads a username -> password-hash map from a JSON file
// (the users.json shape).
func LoadCredentialFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	creds := make(map[string]string)
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("decode credential file: %w", err)
	}
	return creds, nil
}
