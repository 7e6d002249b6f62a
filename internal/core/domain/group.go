package domain

import (
	"strings"
	"time"
)

// Group is a named partition of the document corpus.
// Its description is the only signal the router uses to classify
// free-form queries, so it should be descriptive prose, not a label.
type Group struct {
	// ID is the unique numeric identifier, assigned by the metadata store.
	ID int64

	// Name is the unique human-readable name.
	Name string

	// Description is natural-language prose describing the group's contents.
	Description string

	// CreatedAt is when the group was created.
	CreatedAt time.Time
}

// Validate checks the group fields before persistence.
func (g *Group) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(g.Description) == "" {
		return ErrInvalidInput
	}
	return nil
}
