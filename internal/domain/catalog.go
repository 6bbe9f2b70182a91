package domain

import "fmt"

// Validate checks catalog structure at load time so malformed content is
// rejected before a session ever starts. A catalog with zero sections or an
// empty section is legal (the session simply has nothing to ask); a question
// with a missing ID, no options, an out-of-range answer index, or an ID that
// collides with another question anywhere in the catalog is not.
func (c Catalog) Validate() error {
	seen := make(map[string]struct{}, c.TotalQuestions())
	for si, section := range c.Sections {
		for qi, q := range section.Questions {
			if q.ID == "" {
				return fmt.Errorf("%w: section %d question %d has no id", ErrInvalidCatalog, si, qi)
			}
			if _, dup := seen[q.ID]; dup {
				return fmt.Errorf("%w: duplicate question id %q", ErrInvalidCatalog, q.ID)
			}
			seen[q.ID] = struct{}{}
			if len(q.Options) == 0 {
				return fmt.Errorf("%w: question %q has no options", ErrInvalidCatalog, q.ID)
			}
			if q.Answer < 0 || q.Answer >= len(q.Options) {
				return fmt.Errorf("%w: question %q answer index %d out of range", ErrInvalidCatalog, q.ID, q.Answer)
			}
		}
	}
	return nil
}
