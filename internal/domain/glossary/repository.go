package glossary

import "context"

// Repository is the persistence port for curated vocabulary terms.
type Repository interface {
	// LoadTerms returns every term in curation order.
	LoadTerms(ctx context.Context) ([]Term, error)

	// UpsertTerm inserts or replaces a term by name.
	UpsertTerm(ctx context.Context, term Term) error

	// DeleteTerm removes a term by name.
	DeleteTerm(ctx context.Context, name string) error

	// Count reports the number of stored terms.
	Count(ctx context.Context) (int, error)
}
